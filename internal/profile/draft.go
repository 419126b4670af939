package profile

import (
	"strings"

	"github.com/dmitrijs2005/skilllink/internal/backend"
)

// Draft is the locally-held, possibly-unsaved copy of a profile. Setters
// record which fields were touched; Changes emits only those as a partial
// update, so an untouched column is never overwritten on save.
type Draft struct {
	username  string
	fullName  string
	location  string
	bio       string
	avatarRef string

	touched map[string]struct{}
}

func newDraft() *Draft {
	return &Draft{touched: make(map[string]struct{})}
}

// draftFromRow populates a Draft from a stored row. Loaded values are not
// marked touched.
func draftFromRow(row backend.Row) *Draft {
	d := newDraft()
	d.username = rowString(row, "username")
	d.fullName = rowString(row, "full_name")
	d.location = rowString(row, "location")
	d.bio = rowString(row, "bio")
	d.avatarRef = rowString(row, "avatar_url")
	return d
}

// defaultDraft seeds a blank profile for an identity without a stored row.
// The username defaults to the local part of the email and counts as touched
// so the first save persists it.
func defaultDraft(identity backend.Identity) *Draft {
	d := newDraft()
	d.SetUsername(localPart(identity.Email))
	return d
}

func (d *Draft) Username() string  { return d.username }
func (d *Draft) FullName() string  { return d.fullName }
func (d *Draft) Location() string  { return d.location }
func (d *Draft) Bio() string       { return d.bio }
func (d *Draft) AvatarRef() string { return d.avatarRef }

func (d *Draft) SetUsername(v string) { d.username = v; d.touch("username") }
func (d *Draft) SetFullName(v string) { d.fullName = v; d.touch("full_name") }
func (d *Draft) SetLocation(v string) { d.location = v; d.touch("location") }
func (d *Draft) SetBio(v string)      { d.bio = v; d.touch("bio") }

func (d *Draft) setAvatarRef(v string) { d.avatarRef = v; d.touch("avatar_url") }

func (d *Draft) touch(field string) {
	d.touched[field] = struct{}{}
}

// Changes returns the touched fields as a partial-update row.
func (d *Draft) Changes() backend.Row {
	row := make(backend.Row, len(d.touched))
	for field := range d.touched {
		switch field {
		case "username":
			row[field] = d.username
		case "full_name":
			row[field] = d.fullName
		case "location":
			row[field] = d.location
		case "bio":
			row[field] = d.bio
		case "avatar_url":
			row[field] = d.avatarRef
		}
	}
	return row
}

func rowString(row backend.Row, column string) string {
	if v, ok := row[column].(string); ok {
		return v
	}
	return ""
}

// localPart returns everything before the '@' of an email address.
func localPart(email string) string {
	if i := strings.Index(email, "@"); i >= 0 {
		return email[:i]
	}
	return email
}
