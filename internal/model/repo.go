package model

type Repository struct {
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	Description   string `json:"description"`
	Private       bool   `json:"private"`
	DefaultBranch string `json:"default_branch"`
	HTMLURL       string `json:"html_url"`
}

type GetMyRepositoriesRequest struct{}

type GetMyRepositoriesResponse struct {
	Repositories []Repository `json:"repositories"`
}
