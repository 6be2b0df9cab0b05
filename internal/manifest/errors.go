package manifest

import "fmt"

type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("No manifest.xml found in %s", e.Path)
}

type InvalidError struct {
	Path   string
	Reason string
	Err    error
}

func (e *InvalidError) Error() string {
	subject := "manifest"
	if e.Path != "" {
		subject = fmt.Sprintf("manifest in %s", e.Path)
	}
	if e.Err != nil {
		return fmt.Sprintf("Invalid %s: %s: %s", subject, e.Reason, e.Err)
	}
	return fmt.Sprintf("Invalid %s: %s", subject, e.Reason)
}

func (e *InvalidError) Unwrap() error {
	return e.Err
}
