package export

import (
	"github.com/okian/candidateboard/internal/adapters/repository"
	"github.com/okian/candidateboard/internal/domain/model"
)

// JSON renders list in the persisted store's shape: an indented array ordered by id.
func JSON(list []model.Candidate) ([]byte, error) {
	return repository.Encode(list)
}
