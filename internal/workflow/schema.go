package workflow

import "strings"

type FieldKind string

const (
	KindText     FieldKind = "text"
	KindDate     FieldKind = "date"
	KindSelect   FieldKind = "select"
	KindTextArea FieldKind = "textarea"
)

type Option struct {
	Value string
	Label string
}

// Field describe un input del formulario de alta.
type Field struct {
	Name        string
	Label       string
	Kind        FieldKind
	Options     []Option
	Required    bool
	Default     string
	Placeholder string
	// Prompt es la opción vacía de un select requerido ("Select Type").
	Prompt string
}

// Schema parametriza un Workflow: qué campos tiene el borrador y qué entidad maneja.
type Schema struct {
	// Entity en singular y minúscula; aparece en los mensajes de error ("animal").
	Entity string
	Fields []Field
}

// Draft son los valores del formulario tal cual vienen (todo string).
type Draft map[string]string

func (d Draft) Get(name string) string { return d[name] }

// EmptyDraft es el borrador inicial con los defaults del schema.
func (s Schema) EmptyDraft() Draft {
	d := make(Draft, len(s.Fields))
	for _, f := range s.Fields {
		d[f.Name] = f.Default
	}
	return d
}

// DraftFrom se queda solo con los campos conocidos.
func (s Schema) DraftFrom(get func(string) string) Draft {
	d := make(Draft, len(s.Fields))
	for _, f := range s.Fields {
		d[f.Name] = get(f.Name)
	}
	return d
}

// Missing devuelve los labels de los requeridos vacíos, en el orden del schema.
func (s Schema) Missing(d Draft) []string {
	var out []string
	for _, f := range s.Fields {
		if f.Required && strings.TrimSpace(d[f.Name]) == "" {
			out = append(out, f.Label)
		}
	}
	return out
}
