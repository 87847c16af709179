package domain

// Sentinel values the gateway stores for fields the client never filled
const (
	NotDefined       = "No definido"
	NotDefinedPlural = "No definidos"
)

// FieldStatus is one entry of the profile completeness checklist
type FieldStatus struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// Checklist is the derived completeness state of a profile
type Checklist []FieldStatus

// AllComplete is true only for a non-empty checklist with every entry complete
func (c Checklist) AllComplete() bool {
	if len(c) == 0 {
		return false
	}
	for _, f := range c {
		if !f.Completed {
			return false
		}
	}
	return true
}

// MissingFields returns the labels of incomplete entries in checklist order
func (c Checklist) MissingFields() []string {
	var out []string
	for _, f := range c {
		if !f.Completed {
			out = append(out, f.Name)
		}
	}
	return out
}

// IsDefined reports whether v holds a real value
func IsDefined(v *string) bool {
	if v == nil {
		return false
	}
	return *v != NotDefined && *v != NotDefinedPlural
}

type checkedField struct {
	label string
	value func(*User) *string
}

type checkedDocField struct {
	label string
	value func(*Document) *string
}

var profileFields = []checkedField{
	{"Ciudad", func(u *User) *string { return u.City }},
	{"Dirección de residencia", func(u *User) *string { return u.ResidenceAddress }},
	{"Género", func(u *User) *string { return u.Genre }},
	{"Numero de WhatsApp", func(u *User) *string { return u.PhoneWhatsapp }},
	{"Numero de celular", func(u *User) *string { return u.Phone }},
}

var documentFields = []checkedDocField{
	{"Documento de identidad por ambos lados", func(d *Document) *string { return d.DocumentSides }},
	{"Selfie de verificacion de identidad", func(d *Document) *string { return d.ImageWithCC }},
	{"Número de documento", func(d *Document) *string { return d.Number }},
}

// BuildChecklist derives the completeness checklist that gates the loan
// request flow. Only the first document is inspected.
func BuildChecklist(u *User) Checklist {
	if u == nil {
		return nil
	}

	out := make(Checklist, 0, len(profileFields)+len(documentFields))
	for _, f := range profileFields {
		out = append(out, FieldStatus{Name: f.label, Completed: IsDefined(f.value(u))})
	}

	var doc *Document
	if len(u.Document) > 0 {
		doc = &u.Document[0]
	}
	for _, f := range documentFields {
		completed := doc != nil && IsDefined(f.value(doc))
		out = append(out, FieldStatus{Name: f.label, Completed: completed})
	}

	return out
}
