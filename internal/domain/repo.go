package domain

import (
	"context"
	"errors"

	"github.com/readmegen-lab/backend/internal/model"
	"github.com/readmegen-lab/backend/internal/repository"
	"github.com/readmegen-lab/backend/pkg/api/github"
	"github.com/readmegen-lab/backend/pkg/errorx"
	"github.com/readmegen-lab/backend/pkg/xcontext"
)

type RepoDomain interface {
	GetMyRepositories(context.Context, *model.GetMyRepositoriesRequest) (*model.GetMyRepositoriesResponse, error)
}

type repoDomain struct {
	userRepo       repository.UserRepository
	githubEndpoint github.IEndpoint
}

func NewRepoDomain(
	userRepo repository.UserRepository,
	githubEndpoint github.IEndpoint,
) RepoDomain {
	return &repoDomain{
		userRepo:       userRepo,
		githubEndpoint: githubEndpoint,
	}
}

func (d *repoDomain) GetMyRepositories(
	ctx context.Context, req *model.GetMyRepositoriesRequest,
) (*model.GetMyRepositoriesResponse, error) {
	// The provider token is decrypted here, at the point of use.
	serviceToken, err := d.userRepo.GetServiceToken(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get provider token: %v", err)
		return nil, errorx.Unknown
	}

	if serviceToken == "" {
		return nil, errorx.New(errorx.Unavailable, "No provider token is linked to this account")
	}

	records, err := d.githubEndpoint.GetRepositories(ctx, serviceToken)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot list repositories: %v", err)
		var errx errorx.Error
		if errors.As(err, &errx) {
			return nil, errx
		}
		return nil, errorx.Unknown
	}

	repositories := []model.Repository{}
	for _, record := range records {
		repositories = append(repositories, model.Repository{
			Name:          record.Name,
			FullName:      record.FullName,
			Description:   record.Description,
			Private:       record.Private,
			DefaultBranch: record.DefaultBranch,
			HTMLURL:       record.HTMLURL,
		})
	}

	return &model.GetMyRepositoriesResponse{Repositories: repositories}, nil
}
