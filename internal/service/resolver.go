package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/cleberrangel/clickup-task-analyzer/internal/logger"
	"github.com/cleberrangel/clickup-task-analyzer/internal/model"
)

// TeamAPI é a parte do cliente ClickUp usada para resolver usuários
type TeamAPI interface {
	GetTeams(ctx context.Context) ([]model.Team, error)
	GetTeam(ctx context.Context, teamID string) (*model.Team, error)
}

// UserResolver encontra um membro do time a partir de parte do nome ou email
type UserResolver struct {
	api TeamAPI
}

// NewUserResolver cria um novo resolver
func NewUserResolver(api TeamAPI) *UserResolver {
	return &UserResolver{api: api}
}

// ResolveUser busca (case-insensitive) partialName no username e no email de cada membro.
// Sem teamID usa o primeiro time da chave. Com vários resultados o primeiro na ordem do
// roster vence e os demais vão em Candidates.
func (r *UserResolver) ResolveUser(ctx context.Context, partialName, teamID string) (*model.UserResolution, error) {
	log := logger.Get(ctx)

	if teamID == "" {
		teams, err := r.api.GetTeams(ctx)
		if err != nil {
			return nil, err
		}
		if len(teams) == 0 {
			return nil, model.ErrNoTeams
		}
		teamID = teams[0].ID
		log.Info().
			Str("team_id", teamID).
			Str("team", teams[0].Name).
			Msg("Usando primeiro time disponível")
	}

	team, err := r.api.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	query := strings.ToLower(partialName)
	var matches []model.User
	for _, member := range team.Members {
		u := member.User
		if strings.Contains(strings.ToLower(u.Username), query) ||
			strings.Contains(strings.ToLower(u.Email), query) {
			matches = append(matches, u)
		}
	}

	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %q no time %s", model.ErrUserNotFound, partialName, teamID)
	}

	res := &model.UserResolution{
		User:     matches[0],
		TeamID:   teamID,
		TeamName: team.Name,
	}

	if len(matches) > 1 {
		res.Candidates = matches[1:]
		names := make([]string, 0, len(matches))
		for _, u := range matches {
			names = append(names, fmt.Sprintf("%s <%s>", u.Username, u.Email))
		}
		log.Warn().
			Str("query", partialName).
			Strs("matches", names).
			Str("selected", res.User.Username).
			Msg("Vários usuários encontrados, usando o primeiro")
	}

	log.Info().
		Int64("user_id", res.User.ID).
		Str("username", res.User.Username).
		Str("email", res.User.Email).
		Msg("Usuário selecionado")

	return res, nil
}
