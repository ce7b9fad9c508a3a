package model

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrMissingAPIKey indica que CLICKUP_API_KEY não foi configurada
	ErrMissingAPIKey = errors.New("chave da API do ClickUp não configurada")

	// ErrRateLimited indica que a API do ClickUp retornou 429
	ErrRateLimited = errors.New("rate limit excedido na API do ClickUp")

	// ErrUnauthorized indica token inválido
	ErrUnauthorized = errors.New("token do ClickUp inválido ou expirado")

	// ErrNotFound indica recurso não encontrado
	ErrNotFound = errors.New("recurso não encontrado no ClickUp")

	// ErrNoTeams indica que a chave não tem acesso a nenhum time
	ErrNoTeams = errors.New("nenhum time encontrado para esta chave")

	// ErrUserNotFound indica que nenhum membro corresponde à busca
	ErrUserNotFound = errors.New("nenhum usuário encontrado")

	// ErrInvalidWindow indica janela de datas inválida
	ErrInvalidWindow = errors.New("janela de datas inválida")

	// ErrInvalidRequest indica parâmetros de entrada inválidos
	ErrInvalidRequest = errors.New("requisição inválida")
)

// RemoteRequestError descreve uma falha de transporte ou HTTP na API do ClickUp.
// StatusCode é 0 quando a requisição nem chegou a ter resposta.
type RemoteRequestError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
	Err        error
}

func (e *RemoteRequestError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	}
	if e.Body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

func (e *RemoteRequestError) Unwrap() error {
	return e.Err
}

// Is permite errors.Is(err, ErrRateLimited) etc. a partir do status HTTP
func (e *RemoteRequestError) Is(target error) bool {
	switch target {
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}
