package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/gophstore/internal/client/models"
)

// EndOfCharacters is the error text the character API sends for a page past
// the last one.
const EndOfCharacters = "There is nothing here"

// CharacterPage is one page of the public character list.
type CharacterPage struct {
	Characters []models.Character
	Next       string
}

// CharacterClient reads the public character list. It does not need a token,
// but goes through the same Gateway so requests are traced.
type CharacterClient struct {
	gw       *Gateway
	endpoint string
}

func NewCharacterClient(gw *Gateway, endpoint string) *CharacterClient {
	return &CharacterClient{gw: gw, endpoint: endpoint}
}

// ListCharacters fetches page (1-based). A 404 carrying EndOfCharacters is
// reported as an empty page with no next pointer; any other 404 is an error.
func (c *CharacterClient) ListCharacters(ctx context.Context, page int) (CharacterPage, error) {
	var resp struct {
		Info struct {
			Next *string `json:"next"`
		} `json:"info"`
		Results []models.Character `json:"results"`
	}
	err := c.gw.Do(ctx, Request{
		Method: http.MethodGet,
		Path:   c.endpoint,
		Query:  url.Values{"page": {strconv.Itoa(page)}},
	}, &resp)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound &&
			apiErr.Message == EndOfCharacters {
			return CharacterPage{}, nil
		}
		return CharacterPage{}, err
	}
	out := CharacterPage{Characters: resp.Results}
	if resp.Info.Next != nil {
		out.Next = *resp.Info.Next
	}
	return out, nil
}
