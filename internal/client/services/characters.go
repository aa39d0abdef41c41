package services

import (
	"context"

	"github.com/dmitrijs2005/gophstore/internal/client/client"
	"github.com/dmitrijs2005/gophstore/internal/client/models"
	"github.com/dmitrijs2005/gophstore/internal/client/pagination"
)

// CharacterLister is satisfied by client.CharacterClient.
type CharacterLister interface {
	ListCharacters(ctx context.Context, page int) (client.CharacterPage, error)
}

// CharacterService backs the portfolio screen.
type CharacterService struct {
	lister CharacterLister
}

func NewCharacterService(l CharacterLister) *CharacterService {
	return &CharacterService{lister: l}
}

func (s *CharacterService) Fetcher() pagination.Fetcher[models.Character, struct{}] {
	return func(ctx context.Context, page int, _ struct{}) (pagination.Page[models.Character], error) {
		res, err := s.lister.ListCharacters(ctx, page)
		if err != nil {
			return pagination.Page[models.Character]{}, err
		}
		return pagination.Page[models.Character]{Items: res.Characters, HasNext: res.Next != ""}, nil
	}
}

// NewList builds the character list controller.
func (s *CharacterService) NewList() *pagination.Controller[models.Character, struct{}] {
	return pagination.New(s.Fetcher(), struct{}{}, pagination.Options{Policy: pagination.ByNextPointer})
}
