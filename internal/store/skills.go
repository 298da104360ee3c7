package store

import (
	"context"
	"fmt"
)

// AddProjectSkill reports false when the pair already exists; no second row
// is written.
func (s *Store) AddProjectSkill(ctx context.Context, projectID int64, skill string) (bool, error) {
	res, err := s.DB.ExecContext(ctx, `
		INSERT INTO project_skills (project_id, skill_name)
		VALUES ($1, $2)
		ON CONFLICT (project_id, skill_name) DO NOTHING
	`, projectID, skill)
	if err != nil {
		return false, fmt.Errorf("add project skill: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *Store) ListProjectSkills(ctx context.Context, projectID int64) ([]string, error) {
	skills := []string{}
	err := s.DB.SelectContext(ctx, &skills, `
		SELECT skill_name FROM project_skills
		WHERE project_id = $1
		ORDER BY skill_name
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list project skills: %w", err)
	}
	return skills, nil
}

func (s *Store) RemoveProjectSkill(ctx context.Context, projectID int64, skill string) error {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM project_skills WHERE project_id = $1 AND skill_name = $2`, projectID, skill)
	return affectedOne(res, err)
}
