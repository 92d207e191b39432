// internal/template/render.go
package template

import (
	"strings"

	"github.com/saintgrid/bulkmail-backend/internal/model"
)

// DefaultName fills {{name}} when a recipient row had no name.
const DefaultName = "Valued Customer"

// Render substitutes every literal {{name}} and {{email}} in the template.
// No HTML escaping: callers are trusted to supply well-formed templates.
func Render(tpl string, r model.Recipient) string {
	name := r.Name
	if name == "" {
		name = DefaultName
	}
	out := strings.ReplaceAll(tpl, "{{name}}", name)
	out = strings.ReplaceAll(out, "{{email}}", r.Email)
	return out
}
