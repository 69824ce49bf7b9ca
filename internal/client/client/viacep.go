package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/dragoncontacts/internal/client/models"
	"github.com/dmitrijs2005/dragoncontacts/internal/client/validate"
	"github.com/dmitrijs2005/dragoncontacts/internal/common"
	"github.com/dmitrijs2005/dragoncontacts/internal/netx"
)

const (
	DefaultViaCEPBaseURL = "https://viacep.com.br/ws"
	minStreetQueryLen    = 3
)

// ViaCEP talks to the viacep.com.br JSON API.
type ViaCEP struct {
	baseURL string
	http    *http.Client
}

func NewViaCEP(baseURL string, hc *http.Client) *ViaCEP {
	if baseURL == "" {
		baseURL = DefaultViaCEPBaseURL
	}
	return &ViaCEP{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

type viaCEPAddress struct {
	CEP         string `json:"cep"`
	Logradouro  string `json:"logradouro"`
	Complemento string `json:"complemento"`
	Bairro      string `json:"bairro"`
	Localidade  string `json:"localidade"`
	UF          string `json:"uf"`
	// Erro is true (or "true") when the CEP does not exist.
	Erro json.RawMessage `json:"erro,omitempty"`
}

func (a viaCEPAddress) notFound() bool {
	e := strings.Trim(string(a.Erro), `" `)
	return e != "" && e != "false"
}

func (a viaCEPAddress) toModel() models.PostalAddress {
	return models.PostalAddress{
		PostalCode:   a.CEP,
		Street:       a.Logradouro,
		Complement:   a.Complemento,
		Neighborhood: a.Bairro,
		City:         a.Localidade,
		State:        a.UF,
	}
}

// LookupCEP resolves a single postal code. cep may be formatted or bare digits.
func (c *ViaCEP) LookupCEP(ctx context.Context, cep string) (*models.PostalAddress, error) {
	digits := validate.NormalizeDigits(cep)
	if len(digits) != 8 {
		return nil, common.ValidationError("postal code", "must have 8 digits")
	}

	var out viaCEPAddress
	if err := netx.GetJSON(ctx, c.http, fmt.Sprintf("%s/%s/json/", c.baseURL, digits), &out); err != nil {
		return nil, fmt.Errorf("viacep lookup %s: %w", digits, err)
	}
	if out.notFound() {
		return nil, fmt.Errorf("cep %s: %w", validate.FormatCEP(digits), common.ErrNotFound)
	}

	addr := out.toModel()
	return &addr, nil
}

// SearchByLocation lists addresses on street in city/uf. The street must have
// at least three characters. No match is an empty result, not an error.
func (c *ViaCEP) SearchByLocation(ctx context.Context, uf, city, street string) ([]models.PostalAddress, error) {
	uf, city, street = strings.TrimSpace(uf), strings.TrimSpace(city), strings.TrimSpace(street)
	if uf == "" || city == "" {
		return nil, common.ValidationError("address search", "state and city are required")
	}
	if len([]rune(street)) < minStreetQueryLen {
		return nil, common.ValidationError("address search", "street must have at least 3 characters")
	}

	u := fmt.Sprintf("%s/%s/%s/%s/json/", c.baseURL,
		url.PathEscape(uf), url.PathEscape(city), url.PathEscape(street))

	var out []viaCEPAddress
	if err := netx.GetJSON(ctx, c.http, u, &out); err != nil {
		return nil, fmt.Errorf("viacep search: %w", err)
	}

	res := make([]models.PostalAddress, 0, len(out))
	for _, a := range out {
		if a.notFound() {
			continue
		}
		res = append(res, a.toModel())
	}
	return res, nil
}
