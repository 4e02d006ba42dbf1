package diag

// Diagnostic is one finding produced by a pass. Subject names the procedure
// (or template group) the finding is about; File is the input it came from.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Subject  string
	File     string
	Message  string
	Notes    []string
}

func New(sev Severity, code Code, subject, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Subject:  subject,
		Message:  msg,
	}
}

func NewError(code Code, subject, msg string) Diagnostic {
	return New(SevError, code, subject, msg)
}

func NewWarning(code Code, subject, msg string) Diagnostic {
	return New(SevWarning, code, subject, msg)
}

func (d Diagnostic) WithNote(msg string) Diagnostic {
	d.Notes = append(append([]string(nil), d.Notes...), msg)
	return d
}

func (d Diagnostic) WithFile(path string) Diagnostic {
	d.File = path
	return d
}
