package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Options points the resolver at its configuration sources. Zero values fall
// back to the built-in network definitions and the environment alone.
type Options struct {
	NetworksPath    string
	CredentialsPath string
}

// Environ converts an os.Environ-style slice into the map form Resolve takes.
func Environ(pairs []string) map[string]string {
	env := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		if k, v, ok := strings.Cut(pair, "="); ok {
			env[k] = v
		}
	}
	return env
}

// Resolve assembles the NetworkProfile for the named network. It fails with
// ErrUnknownNetwork for an unrecognized name and with MissingFieldError when
// any required credential field is absent from every layer; on failure no
// partially populated profile is returned.
func Resolve(networkName string, environ map[string]string, opts Options) (*NetworkProfile, error) {
	networks, err := loadNetworks(opts.NetworksPath)
	if err != nil {
		return nil, err
	}
	block, ok := networks[networkName]
	if !ok {
		return nil, fmt.Errorf("%w: %q (expected local, testnet or mainnet)", ErrUnknownNetwork, networkName)
	}

	creds, err := loadCredentials(opts.CredentialsPath, environ)
	if err != nil {
		return nil, err
	}

	profile := &NetworkProfile{
		Name:             block.Name,
		RPCEndpoint:      block.RPCEndpoint,
		HelperURL:        block.HelperURL,
		AccountPrefix:    block.AccountPrefix,
		RootAccount:      block.RootAccount,
		StoreName:        block.StoreName,
		MinterAccount:    block.MinterAccount,
		CredentialsDir:   block.CredentialsDir,
		ContractsDir:     block.ContractsDir,
		ArtifactsDir:     block.ArtifactsDir,
		IndexerBin:       block.IndexerBin,
		IndexerHealthURL: block.IndexerHealthURL,
		Database: Database{
			User:     creds.PostgresUser,
			Password: creds.PostgresPassword,
			Host:     creds.PostgresHost,
			Port:     creds.PostgresPort,
			Name:     creds.PostgresDatabase,
		},
	}
	if profile.RootAccount == "" {
		profile.RootAccount = profile.AccountPrefix
	}
	if profile.ContractsDir == "" {
		profile.ContractsDir = "contracts"
	}
	if profile.ArtifactsDir == "" {
		// cargo's wasm output directory; overridable for projects that copy
		// artifacts elsewhere.
		profile.ArtifactsDir = filepath.Join(profile.ContractsDir, "target", "wasm32-unknown-unknown", "release")
	}
	if profile.IndexerBin == "" {
		profile.IndexerBin = "mintbase-indexer"
	}

	required := []struct {
		field string
		value string
	}{
		{"postgres_user", profile.Database.User},
		{"postgres_password", profile.Database.Password},
		{"postgres_host", profile.Database.Host},
		{"postgres_database", profile.Database.Name},
		{"account_prefix", profile.AccountPrefix},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, &MissingFieldError{Field: r.field}
		}
	}
	return profile, nil
}
