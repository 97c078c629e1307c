package client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/peerberrygo/peerberry/endpoints"
	"github.com/peerberrygo/peerberry/requester"
)

// Country is a lending country as listed by the globals endpoint.
type Country struct {
	ID  int    `json:"id"`
	ISO string `json:"iso"`
}

// Originator is a loan originator as listed by the globals endpoint. Some
// originator brands operate several legal entities and carry more than one
// ID.
type Originator struct {
	IDs IDList `json:"id"`
}

// IDList decodes the globals "id" field, which the API serves either as a
// single number or as a list of numbers.
type IDList []int

func (l *IDList) UnmarshalJSON(data []byte) error {
	var single int
	if err := json.Unmarshal(data, &single); err == nil {
		*l = IDList{single}
		return nil
	}
	var many []int
	if err := json.Unmarshal(data, &many); err != nil {
		return errors.Wrap(err, "id is neither a number nor a list of numbers")
	}
	*l = IDList(many)
	return nil
}

// Countries returns the country table keyed by display name, fetched from
// the globals endpoint on first use and cached for the client lifetime.
func (c *Client) Countries() (map[string]Country, error) {
	if err := c.loadGlobals(); err != nil {
		return nil, err
	}
	return c.countries, nil
}

// Originators returns the originator table keyed by display name, fetched
// from the globals endpoint on first use and cached for the client
// lifetime.
func (c *Client) Originators() (map[string]Originator, error) {
	if err := c.loadGlobals(); err != nil {
		return nil, err
	}
	return c.originators, nil
}

func (c *Client) loadGlobals() error {
	if c.countries != nil && c.originators != nil {
		return nil
	}

	// The cache-busting t parameter mirrors what the web app sends.
	query := url.Values{}
	query.Set("t", strconv.FormatInt(time.Now().Unix(), 10))

	var resp struct {
		Countries []struct {
			Title string `json:"title"`
			Country
		} `json:"countries"`
		Originators []struct {
			Title string `json:"title"`
			Originator
		} `json:"originators"`
	}
	if err := c.session.DoJSON(requester.Request{Path: endpoints.Globals, Query: query}, &resp); err != nil {
		return errors.Wrap(err, "[Client.loadGlobals]")
	}

	c.countries = make(map[string]Country, len(resp.Countries))
	for _, entry := range resp.Countries {
		c.countries[strings.TrimSpace(entry.Title)] = entry.Country
	}
	c.originators = make(map[string]Originator, len(resp.Originators))
	for _, entry := range resp.Originators {
		c.originators[strings.TrimSpace(entry.Title)] = entry.Originator
	}
	return nil
}

// countryIDs resolves country display names to API IDs, preserving order.
func (c *Client) countryIDs(names []string) ([]string, error) {
	countries, err := c.Countries()
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(names))
	for _, name := range names {
		country, ok := countries[name]
		if !ok {
			return nil, fmt.Errorf("%q must be one of the following countries: %s", name, strings.Join(sortedKeys(countries), ", "))
		}
		ids = append(ids, strconv.Itoa(country.ID))
	}
	return ids, nil
}

// originatorIDs resolves originator display names to API IDs, flattening
// multi-entity originators while preserving order.
func (c *Client) originatorIDs(names []string) ([]string, error) {
	originators, err := c.Originators()
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, name := range names {
		originator, ok := originators[name]
		if !ok {
			return nil, fmt.Errorf("%q must be one of the following originators: %s", name, strings.Join(sortedKeys(originators), ", "))
		}
		for _, id := range originator.IDs {
			ids = append(ids, strconv.Itoa(id))
		}
	}
	return ids, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
