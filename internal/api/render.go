package api

import (
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
)

const alertTemplate = "alert"

// alertRenderer renders form outcomes as a small page that shows an alert
// and navigates to the next page.
type alertRenderer struct {
	templates *template.Template
}

func newAlertRenderer() *alertRenderer {
	return &alertRenderer{
		templates: template.Must(template.New(alertTemplate).Parse(`<script>
  alert({{.Message}});
  window.location.href = {{.Redirect}};
</script>
`)),
	}
}

func (r *alertRenderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}
