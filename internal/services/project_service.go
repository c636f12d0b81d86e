package services

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"databank/internal/models"
	"databank/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProjectService manages research projects. Reads are scoped to members of
// the project; writes require a project manager, which is a member who owns
// at least one of the project's datasets.
type ProjectService interface {
	CreateProject(ctx context.Context, currentUserID string, req models.CreateProjectRequest) (*models.Project, error)
	GetAllProjects(ctx context.Context, currentUserID string) ([]*models.Project, error)
	GetProject(ctx context.Context, currentUserID, projectID string) (*models.Project, error)
	UpdateProject(ctx context.Context, currentUserID, projectID string, req models.UpdateProjectRequest) (*models.Project, error)
	DeleteProject(ctx context.Context, currentUserID, projectID string) (*models.Project, error)
	AddUser(ctx context.Context, currentUserID, projectID, userID string) (*models.Project, error)
	RemoveUser(ctx context.Context, currentUserID, projectID, userID string) (*models.Project, error)
	AddDataset(ctx context.Context, currentUserID, projectID, datasetID string) (*models.Project, error)
	RemoveDataset(ctx context.Context, currentUserID, projectID, datasetID string) (*models.Project, error)
	GetProjectDatasets(ctx context.Context, currentUserID, projectID string) ([]models.ProjectDataset, error)
	// GrantDatasetOwnership records that userID owns datasetID.
	GrantDatasetOwnership(ctx context.Context, userID, datasetID string) error
}

type projectService struct {
	repo repositories.ProjectRepository
	log  *zap.Logger
	now  func() time.Time
}

func NewProjectService(repo repositories.ProjectRepository, log *zap.Logger) ProjectService {
	return &projectService{repo: repo, log: log, now: time.Now}
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (s *projectService) CreateProject(ctx context.Context, currentUserID string, req models.CreateProjectRequest) (*models.Project, error) {
	owner, err := s.repo.IsDatasetOwner(ctx, currentUserID)
	if err != nil {
		return nil, err
	}
	if !owner {
		return nil, ErrNotDatasetOwner
	}
	if !slices.Contains(req.UserIDs, currentUserID) {
		return nil, ErrCreatorNotMember
	}

	userIDs := slices.Clone(req.UserIDs)
	slices.Sort(userIDs)
	userIDs = slices.Compact(userIDs)

	now := s.now().UTC()
	p := &models.Project{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		UserIDs:     userIDs,
		Datasets:    req.Datasets,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.Datasets == nil {
		p.Datasets = []models.ProjectDataset{}
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, repositories.ErrUnknownReference) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	s.log.Info("[projects][create] project created",
		zap.String("project_id", p.ID), zap.String("user_id", currentUserID), zap.Int("members", len(userIDs)))
	return p, nil
}

func (s *projectService) GetAllProjects(ctx context.Context, currentUserID string) ([]*models.Project, error) {
	return s.repo.ListForMember(ctx, currentUserID)
}

func (s *projectService) GetProject(ctx context.Context, currentUserID, projectID string) (*models.Project, error) {
	if !validID(projectID) {
		return nil, ErrProjectNotFound
	}
	p, err := s.repo.GetForMember(ctx, projectID, currentUserID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProjectNotFound
	}
	return p, nil
}

// managedProject loads the project for a manager. Non-members get
// ErrProjectNotFound, members without a project dataset ErrNotProjectManager.
func (s *projectService) managedProject(ctx context.Context, currentUserID, projectID string) (*models.Project, error) {
	p, err := s.GetProject(ctx, currentUserID, projectID)
	if err != nil {
		return nil, err
	}
	ok, err := s.repo.OwnsAnyDataset(ctx, currentUserID, p.DatasetIDs())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotProjectManager
	}
	return p, nil
}

// reload returns the project after a change. The manager may no longer be a
// member, so it is read without the membership filter.
func (s *projectService) reload(ctx context.Context, projectID string) (*models.Project, error) {
	p, err := s.repo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProjectNotFound
	}
	return p, nil
}

func (s *projectService) UpdateProject(ctx context.Context, currentUserID, projectID string, req models.UpdateProjectRequest) (*models.Project, error) {
	p, err := s.managedProject(ctx, currentUserID, projectID)
	if err != nil {
		return nil, err
	}
	name, description := p.Name, p.Description
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		description = *req.Description
	}
	ok, err := s.repo.UpdateDetails(ctx, projectID, name, description, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrProjectNotFound
	}
	return s.reload(ctx, projectID)
}

func (s *projectService) DeleteProject(ctx context.Context, currentUserID, projectID string) (*models.Project, error) {
	p, err := s.managedProject(ctx, currentUserID, projectID)
	if err != nil {
		return nil, err
	}
	ok, err := s.repo.Delete(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrProjectNotFound
	}
	s.log.Info("[projects][delete] project deleted",
		zap.String("project_id", projectID), zap.String("user_id", currentUserID))
	return p, nil
}

func (s *projectService) AddUser(ctx context.Context, currentUserID, projectID, userID string) (*models.Project, error) {
	if _, err := s.managedProject(ctx, currentUserID, projectID); err != nil {
		return nil, err
	}
	if !validID(userID) {
		return nil, ErrUserNotFound
	}
	if err := s.repo.AddMember(ctx, projectID, userID); err != nil {
		if errors.Is(err, repositories.ErrUnknownReference) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	s.log.Info("[projects][add_user] member added",
		zap.String("project_id", projectID), zap.String("member_id", userID))
	return s.reload(ctx, projectID)
}

func (s *projectService) RemoveUser(ctx context.Context, currentUserID, projectID, userID string) (*models.Project, error) {
	p, err := s.managedProject(ctx, currentUserID, projectID)
	if err != nil {
		return nil, err
	}
	if !p.HasMember(userID) {
		return p, nil
	}
	if err := s.repo.RemoveMember(ctx, projectID, userID); err != nil {
		return nil, err
	}
	s.log.Info("[projects][remove_user] member removed",
		zap.String("project_id", projectID), zap.String("member_id", userID))
	return s.reload(ctx, projectID)
}

func (s *projectService) AddDataset(ctx context.Context, currentUserID, projectID, datasetID string) (*models.Project, error) {
	if _, err := s.managedProject(ctx, currentUserID, projectID); err != nil {
		return nil, err
	}
	if err := s.repo.AddDataset(ctx, projectID, datasetID); err != nil {
		return nil, err
	}
	return s.reload(ctx, projectID)
}

func (s *projectService) RemoveDataset(ctx context.Context, currentUserID, projectID, datasetID string) (*models.Project, error) {
	if _, err := s.managedProject(ctx, currentUserID, projectID); err != nil {
		return nil, err
	}
	if err := s.repo.RemoveDataset(ctx, projectID, datasetID); err != nil {
		return nil, err
	}
	return s.reload(ctx, projectID)
}

func (s *projectService) GetProjectDatasets(ctx context.Context, currentUserID, projectID string) ([]models.ProjectDataset, error) {
	p, err := s.GetProject(ctx, currentUserID, projectID)
	if err != nil {
		return nil, err
	}
	return p.Datasets, nil
}

func (s *projectService) GrantDatasetOwnership(ctx context.Context, userID, datasetID string) error {
	if !validID(userID) {
		return ErrUserNotFound
	}
	if err := s.repo.AddDatasetOwner(ctx, userID, datasetID); err != nil {
		if errors.Is(err, repositories.ErrUnknownReference) {
			return ErrUserNotFound
		}
		return err
	}
	s.log.Info("[projects][grant_dataset] dataset ownership granted",
		zap.String("user_id", userID), zap.String("dataset_id", datasetID))
	return nil
}
