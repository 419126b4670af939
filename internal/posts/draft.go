package posts

import "github.com/dmitrijs2005/skilllink/internal/backend"

// Categories a post may be filed under.
var Categories = []string{"Design", "Development", "Marketing", "Writing", "Other"}

// Draft is the locally-held, possibly-unsaved copy of a skill post. An empty
// id means create mode; a non-empty id means the draft edits an existing row.
type Draft struct {
	id          string
	title       string
	description string
	category    string
	imageRef    string

	touched map[string]struct{}
}

func newDraft() *Draft {
	return &Draft{touched: make(map[string]struct{})}
}

// NewDraft returns an empty create-mode draft.
func NewDraft() *Draft {
	return newDraft()
}

func draftFromRow(row backend.Row) *Draft {
	d := newDraft()
	d.id = rowString(row, "id")
	d.title = rowString(row, "title")
	d.description = rowString(row, "description")
	d.category = rowString(row, "category")
	d.imageRef = rowString(row, "image_url")
	return d
}

func (d *Draft) ID() string          { return d.id }
func (d *Draft) Title() string       { return d.title }
func (d *Draft) Description() string { return d.description }
func (d *Draft) Category() string    { return d.category }
func (d *Draft) ImageRef() string    { return d.imageRef }

func (d *Draft) SetTitle(v string)       { d.title = v; d.touch("title") }
func (d *Draft) SetDescription(v string) { d.description = v; d.touch("description") }
func (d *Draft) SetCategory(v string)    { d.category = v; d.touch("category") }

func (d *Draft) setImageRef(v string) { d.imageRef = v; d.touch("image_url") }

func (d *Draft) touch(field string) {
	d.touched[field] = struct{}{}
}

// Changes returns the touched fields as a partial-update row.
func (d *Draft) Changes() backend.Row {
	row := make(backend.Row, len(d.touched))
	for field := range d.touched {
		switch field {
		case "title":
			row[field] = d.title
		case "description":
			row[field] = d.description
		case "category":
			row[field] = d.category
		case "image_url":
			row[field] = d.imageRef
		}
	}
	return row
}

// reset empties the draft so the form is ready for a new entry after a
// successful create-mode save.
func (d *Draft) reset() {
	*d = *newDraft()
}

func rowString(row backend.Row, column string) string {
	if v, ok := row[column].(string); ok {
		return v
	}
	return ""
}

func validCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}
