package models

import "time"

// Project groups datasets for a set of member users. Members who own one of
// the project's datasets manage it.
type Project struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	UserIDs     []string         `json:"userIds"`
	Datasets    []ProjectDataset `json:"datasets"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

func (p *Project) HasMember(userID string) bool {
	for _, id := range p.UserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (p *Project) DatasetIDs() []string {
	ids := make([]string, 0, len(p.Datasets))
	for _, d := range p.Datasets {
		ids = append(ids, d.DatasetID)
	}
	return ids
}

type ProjectDataset struct {
	DatasetID string `json:"datasetId" binding:"required"`
}

type CreateProjectRequest struct {
	Name        string           `json:"name" binding:"required"`
	Description string           `json:"description"`
	UserIDs     []string         `json:"userIds" binding:"required,min=1,dive,uuid"`
	Datasets    []ProjectDataset `json:"datasets" binding:"dive"`
}

// UpdateProjectRequest changes only the fields that are set.
type UpdateProjectRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1"`
	Description *string `json:"description"`
}

type ProjectUserRequest struct {
	UserID string `json:"userId" binding:"required,uuid"`
}

type DatasetOwnershipRequest struct {
	DatasetID string `json:"datasetId" binding:"required"`
}
