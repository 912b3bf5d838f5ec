package models

import "time"

// Project is a portfolio entry shown on the public pages
type Project struct {
	ID           int64
	Title        string
	Description  string
	Technologies []string
	ProjectLink  *string
	GithubLink   *string
	ImageURL     *string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProjectResponse is the public JSON shape of a project
type ProjectResponse struct {
	ID           int64     `json:"id"`
	Title        string    `json:"titulo"`
	Description  string    `json:"descricao"`
	Technologies []string  `json:"tecnologias"`
	ProjectLink  *string   `json:"linkProjeto"`
	GithubLink   *string   `json:"linkGithub"`
	ImageURL     *string   `json:"imagem"`
	CreatedAt    time.Time `json:"criadoEm"`
}

// ToResponse converts the project to its public representation.
// Technologies is never null in the output.
func (p *Project) ToResponse() ProjectResponse {
	techs := p.Technologies
	if techs == nil {
		techs = []string{}
	}
	return ProjectResponse{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		Technologies: techs,
		ProjectLink:  p.ProjectLink,
		GithubLink:   p.GithubLink,
		ImageURL:     p.ImageURL,
		CreatedAt:    p.CreatedAt,
	}
}

// TechnologiesResponse lists the recognized technology tags
type TechnologiesResponse struct {
	Technologies []string `json:"tecnologias"`
	Total        int      `json:"total"`
}

// ProjectForm represents the authoring form fields
type ProjectForm struct {
	Title        string `form:"titulo" json:"titulo"`
	Description  string `form:"descricao" json:"descricao"`
	Technologies string `form:"techs" json:"techs"`
	ProjectLink  string `form:"link" json:"link"`
	GithubLink   string `form:"link_github" json:"link_github"`
}
