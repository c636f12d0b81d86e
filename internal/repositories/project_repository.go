package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"databank/internal/models"

	"github.com/lib/pq"
)

type ProjectRepository interface {
	// Create stores the project with its members and datasets. An unknown
	// member id yields ErrUnknownReference.
	Create(ctx context.Context, p *models.Project) error
	// GetByID and GetForMember return nil, nil when nothing matches.
	GetByID(ctx context.Context, id string) (*models.Project, error)
	GetForMember(ctx context.Context, id, userID string) (*models.Project, error)
	ListForMember(ctx context.Context, userID string) ([]*models.Project, error)
	UpdateDetails(ctx context.Context, id, name, description string, at time.Time) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)

	// membership and datasets, idempotent
	AddMember(ctx context.Context, id, userID string) error
	RemoveMember(ctx context.Context, id, userID string) error
	AddDataset(ctx context.Context, id, datasetID string) error
	RemoveDataset(ctx context.Context, id, datasetID string) error

	// dataset ownership
	IsDatasetOwner(ctx context.Context, userID string) (bool, error)
	OwnsAnyDataset(ctx context.Context, userID string, datasetIDs []string) (bool, error)
	AddDatasetOwner(ctx context.Context, userID, datasetID string) error
}

type projectRepository struct {
	DB *sql.DB
}

func NewProjectRepository(db *sql.DB) ProjectRepository {
	return &projectRepository{DB: db}
}

const projectSelect = `
	SELECT p.id, p.name, p.description, p.created_at, p.updated_at,
	       ARRAY(SELECT pu.user_id::text FROM project_users pu
	             WHERE pu.project_id = p.id ORDER BY pu.user_id),
	       ARRAY(SELECT pd.dataset_id FROM project_datasets pd
	             WHERE pd.project_id = p.id ORDER BY pd.added_at, pd.dataset_id)
	FROM projects p`

const memberFilter = `EXISTS (SELECT 1 FROM project_users m WHERE m.project_id = p.id AND m.user_id = $2)`

func scanProject(row rowScanner) (*models.Project, error) {
	p := &models.Project{}
	var userIDs, datasetIDs pq.StringArray
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt, &userIDs, &datasetIDs); err != nil {
		return nil, err
	}
	p.UserIDs = []string(userIDs)
	if p.UserIDs == nil {
		p.UserIDs = []string{}
	}
	p.Datasets = make([]models.ProjectDataset, 0, len(datasetIDs))
	for _, id := range datasetIDs {
		p.Datasets = append(p.Datasets, models.ProjectDataset{DatasetID: id})
	}
	return p, nil
}

func (r *projectRepository) Create(ctx context.Context, p *models.Project) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("project begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertProject = `
		INSERT INTO projects (id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err = tx.ExecContext(ctx, insertProject, p.ID, p.Name, p.Description, p.CreatedAt, p.UpdatedAt); err != nil {
		return fmt.Errorf("project create: %w", err)
	}

	const insertUsers = `
		INSERT INTO project_users (project_id, user_id)
		SELECT $1, u FROM unnest($2::uuid[]) AS u
		ON CONFLICT DO NOTHING
	`
	if _, err = tx.ExecContext(ctx, insertUsers, p.ID, pq.Array(p.UserIDs)); err != nil {
		if isForeignKeyViolation(err) {
			return ErrUnknownReference
		}
		return fmt.Errorf("project create users: %w", err)
	}

	if ids := p.DatasetIDs(); len(ids) > 0 {
		const insertDatasets = `
			INSERT INTO project_datasets (project_id, dataset_id)
			SELECT $1, d FROM unnest($2::text[]) AS d
			ON CONFLICT DO NOTHING
		`
		if _, err = tx.ExecContext(ctx, insertDatasets, p.ID, pq.Array(ids)); err != nil {
			return fmt.Errorf("project create datasets: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("project commit: %w", err)
	}
	return nil
}

func (r *projectRepository) getOne(ctx context.Context, q string, args ...any) (*models.Project, error) {
	p, err := scanProject(r.DB.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("project get: %w", err)
	}
	return p, nil
}

func (r *projectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	return r.getOne(ctx, projectSelect+` WHERE p.id = $1`, id)
}

func (r *projectRepository) GetForMember(ctx context.Context, id, userID string) (*models.Project, error) {
	return r.getOne(ctx, projectSelect+` WHERE p.id = $1 AND `+memberFilter, id, userID)
}

func (r *projectRepository) ListForMember(ctx context.Context, userID string) ([]*models.Project, error) {
	q := projectSelect + `
		WHERE EXISTS (SELECT 1 FROM project_users m WHERE m.project_id = p.id AND m.user_id = $1)
		ORDER BY p.created_at, p.id`
	rows, err := r.DB.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("project list: %w", err)
	}
	defer rows.Close()

	res := []*models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("project list scan: %w", err)
		}
		res = append(res, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("project list: %w", err)
	}
	return res, nil
}

func (r *projectRepository) UpdateDetails(ctx context.Context, id, name, description string, at time.Time) (bool, error) {
	const q = `UPDATE projects SET name = $2, description = $3, updated_at = $4 WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, q, id, name, description, at)
	if err != nil {
		return false, fmt.Errorf("project update: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("project update: %w", err)
	}
	return n == 1, nil
}

func (r *projectRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("project delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("project delete: %w", err)
	}
	return n == 1, nil
}

func (r *projectRepository) exec(ctx context.Context, op, q string, args ...any) error {
	if _, err := r.DB.ExecContext(ctx, q, args...); err != nil {
		if isForeignKeyViolation(err) {
			return ErrUnknownReference
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *projectRepository) AddMember(ctx context.Context, id, userID string) error {
	return r.exec(ctx, "project add member",
		`INSERT INTO project_users (project_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, id, userID)
}

func (r *projectRepository) RemoveMember(ctx context.Context, id, userID string) error {
	return r.exec(ctx, "project remove member",
		`DELETE FROM project_users WHERE project_id = $1 AND user_id = $2`, id, userID)
}

func (r *projectRepository) AddDataset(ctx context.Context, id, datasetID string) error {
	return r.exec(ctx, "project add dataset",
		`INSERT INTO project_datasets (project_id, dataset_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, id, datasetID)
}

func (r *projectRepository) RemoveDataset(ctx context.Context, id, datasetID string) error {
	return r.exec(ctx, "project remove dataset",
		`DELETE FROM project_datasets WHERE project_id = $1 AND dataset_id = $2`, id, datasetID)
}

func (r *projectRepository) IsDatasetOwner(ctx context.Context, userID string) (bool, error) {
	var ok bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_datasets WHERE user_id = $1)`, userID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("dataset owner check: %w", err)
	}
	return ok, nil
}

func (r *projectRepository) OwnsAnyDataset(ctx context.Context, userID string, datasetIDs []string) (bool, error) {
	if len(datasetIDs) == 0 {
		return false, nil
	}
	var ok bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_datasets WHERE user_id = $1 AND dataset_id = ANY($2))`,
		userID, pq.Array(datasetIDs)).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("dataset owner check: %w", err)
	}
	return ok, nil
}

func (r *projectRepository) AddDatasetOwner(ctx context.Context, userID, datasetID string) error {
	return r.exec(ctx, "dataset owner add",
		`INSERT INTO user_datasets (user_id, dataset_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, userID, datasetID)
}
