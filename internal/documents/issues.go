package documents

import "fmt"

// Severity separates input errors from integrity errors and warnings.
type Severity string

const (
	SeverityError     Severity = "error"
	SeverityIntegrity Severity = "integrity"
	SeverityWarning   Severity = "warning"
)

// Code identifies the kind of issue found on a field or core column.
type Code string

const (
	CodeRequiredFieldMissing Code = "required_field_missing"
	CodeTypeMismatch         Code = "type_mismatch"
	CodeInvalidOption        Code = "invalid_option"
	CodeEditorUnavailable    Code = "editor_unavailable"
	CodeSchemaInconsistent   Code = "schema_inconsistent"
	CodeUnknownField         Code = "unknown_field"
	CodeTitleRequired        Code = "title_required"
	CodeSlugInvalid          Code = "slug_invalid"
	CodeSlugExists           Code = "slug_exists"
	CodeStatusInvalid        Code = "status_invalid"
)

// Core column names used as Issue.Field for schema-independent checks.
const (
	FieldTitle  = "title"
	FieldSlug   = "slug"
	FieldStatus = "status"
)

// Issue is one validation finding scoped to a field or core column.
type Issue struct {
	Field    string   `json:"field"`
	Code     Code     `json:"code"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s (%s)", i.Field, i.Message, i.Code)
}

// Blocking reports whether the issue prevents a save.
func (i Issue) Blocking() bool {
	return i.Severity == SeverityError || i.Severity == SeverityIntegrity
}

func inputIssue(field string, code Code, format string, args ...any) Issue {
	return Issue{Field: field, Code: code, Severity: SeverityError, Message: fmt.Sprintf(format, args...)}
}

func warningIssue(field string, code Code, format string, args ...any) Issue {
	return Issue{Field: field, Code: code, Severity: SeverityWarning, Message: fmt.Sprintf(format, args...)}
}

// Issues is an ordered collection of findings.
type Issues []Issue

func (is Issues) filter(keep func(Issue) bool) Issues {
	out := Issues{}
	for _, issue := range is {
		if keep(issue) {
			out = append(out, issue)
		}
	}
	return out
}

// Errors returns client-fixable input errors.
func (is Issues) Errors() Issues {
	return is.filter(func(i Issue) bool { return i.Severity == SeverityError })
}

// Integrity returns schema drift errors.
func (is Issues) Integrity() Issues {
	return is.filter(func(i Issue) bool { return i.Severity == SeverityIntegrity })
}

func (is Issues) Warnings() Issues {
	return is.filter(func(i Issue) bool { return i.Severity == SeverityWarning })
}

func (is Issues) ForField(name string) Issues {
	return is.filter(func(i Issue) bool { return i.Field == name })
}

// Blocking reports whether any issue prevents a save.
func (is Issues) Blocking() bool {
	for _, issue := range is {
		if issue.Blocking() {
			return true
		}
	}
	return false
}

// Has reports whether an issue with code exists for field. An empty field
// matches any field.
func (is Issues) Has(field string, code Code) bool {
	for _, issue := range is {
		if issue.Code == code && (field == "" || issue.Field == field) {
			return true
		}
	}
	return false
}
