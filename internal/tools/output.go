package tools

import "fmt"

// FormatOutput wraps content in the `<name_output>...</name_output>` tag an
// agent sees for whatever tool it invoked.
func FormatOutput(name, content string) string {
	return fmt.Sprintf("<%s_output>\n%s\n</%s_output>", name, content, name)
}
