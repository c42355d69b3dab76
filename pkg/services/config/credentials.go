package config

import (
	"context"
	"fmt"

	"gopkg.in/ini.v1"
)

// Credentials is one named inference profile from the credentials file.
type Credentials struct {
	Endpoint string
	Model    string
	APIKey   string
}

// Registry reads named inference profiles from an ini credentials file, e.g.
//
//	[default]
//	api_key = ...
//	model   = gemini-2.5-flash-preview-09-2025
type Registry interface {
	GetProfiles(ctx context.Context) ([]string, error)
	GetCredentials(ctx context.Context, profile string) (*Credentials, error)
}

type credRegistry struct {
	cfg *ini.File
}

func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	return &credRegistry{cfg: cfg}, nil
}

func (cr *credRegistry) GetProfiles(_ context.Context) ([]string, error) {
	var profiles []string
	for _, section := range cr.cfg.Sections() {
		if len(section.Keys()) > 0 {
			profiles = append(profiles, section.Name())
		}
	}
	return profiles, nil
}

func (cr *credRegistry) GetCredentials(_ context.Context, profile string) (*Credentials, error) {
	section := cr.cfg.Section(profile)
	if section == nil || len(section.Keys()) == 0 {
		return nil, fmt.Errorf("profile %s not found", profile)
	}

	key := section.Key("api_key").String()
	if key == "" {
		return nil, fmt.Errorf("profile %s has no api_key", profile)
	}

	return &Credentials{
		Endpoint: section.Key("endpoint").String(),
		Model:    section.Key("model").String(),
		APIKey:   key,
	}, nil
}
