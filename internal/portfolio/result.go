package portfolio

import (
	"errors"

	"laludev-backend/internal/auth"
	"laludev-backend/internal/upload"
)

// Pages the form flows send the browser back to.
const (
	AdminPage     = "/admin.html"
	AdminFormPage = "/admin-form.html"
)

// Result is the outcome of a form submission as shown to the administrator:
// an alert message followed by navigation to Redirect.
type Result struct {
	OK       bool
	Message  string
	Redirect string
}

// LoginFailed is shown when the credentials are rejected.
func LoginFailed() Result {
	return Result{Message: "Usuário ou senha inválidos!", Redirect: AdminPage}
}

// ProjectCreated is shown after a project is stored.
func ProjectCreated() Result {
	return Result{OK: true, Message: "Projeto cadastrado com sucesso!", Redirect: AdminFormPage}
}

// SubmitFailed maps a SubmitProject error to what the administrator sees.
// Unexpected errors get a generic message.
func SubmitFailed(err error) Result {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return Result{Message: validationMessage(verr), Redirect: AdminFormPage}
	case errors.Is(err, upload.ErrUnsupportedFileType):
		return Result{Message: "Apenas imagens são permitidas!", Redirect: AdminFormPage}
	case errors.Is(err, upload.ErrFileTooLarge):
		return Result{Message: "A imagem excede o tamanho máximo de 5MB!", Redirect: AdminFormPage}
	case errors.Is(err, ErrNotAuthenticated), errors.Is(err, auth.ErrInvalidCredentials):
		return Result{Message: "Sessão expirada, faça login novamente.", Redirect: AdminPage}
	default:
		return Result{Message: "Erro ao cadastrar projeto", Redirect: AdminFormPage}
	}
}

func validationMessage(verr *ValidationError) string {
	switch verr.Field {
	case "titulo":
		return "O título é obrigatório!"
	case "descricao":
		return "A descrição é obrigatória!"
	default:
		return "Dados do projeto inválidos!"
	}
}
