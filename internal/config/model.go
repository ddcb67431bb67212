package config

import (
	"fmt"
	"net/url"
)

// Database holds the connection parameters for the Postgres instance shared
// by the indexer and the orchestrator's state store.
type Database struct {
	User     string
	Password string
	Host     string
	Port     int
	Name     string
}

// DSN renders the parameters as a pgx-compatible connection string.
func (d Database) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		url.QueryEscape(d.User), url.QueryEscape(d.Password), d.Host, d.Port, d.Name)
}

// NetworkProfile is the fully resolved, immutable configuration for one
// target network. It is created once at startup and passed explicitly through
// every component call; no component reads ambient environment state.
type NetworkProfile struct {
	// Name is one of "local", "testnet" or "mainnet".
	Name string

	// RPCEndpoint is the NEAR JSON-RPC endpoint for this network.
	RPCEndpoint string

	// HelperURL is the account-creation helper endpoint, empty on networks
	// where accounts are funded from the root account instead.
	HelperURL string

	// AccountPrefix is the namespace under which all managed accounts live,
	// e.g. "test.near" locally or "near" on mainnet.
	AccountPrefix string

	// RootAccount is the funding account used to create sub-accounts.
	RootAccount string

	// StoreName and MinterAccount parameterize the create-store call.
	StoreName     string
	MinterAccount string

	// CredentialsDir is where the NEAR CLI looks for signing keys.
	CredentialsDir string

	// ContractsDir is the root of the contract Cargo workspace.
	ContractsDir string

	// ArtifactsDir is where built wasm artifacts are collected.
	ArtifactsDir string

	// IndexerBin is the indexer executable started by run-indexer.
	IndexerBin string

	// IndexerHealthURL is polled to decide the detached indexer is ready.
	IndexerHealthURL string

	// Database is the Postgres instance backing both the indexer and the
	// orchestrator's execution records.
	Database Database
}

// FactoryAccount returns the account the store factory contract is deployed
// to, derived from the account prefix.
func (p NetworkProfile) FactoryAccount() string {
	return "factory." + p.AccountPrefix
}

// StoreAccount returns the account the instantiated store contract lives on.
func (p NetworkProfile) StoreAccount() string {
	return p.StoreName + "." + p.FactoryAccount()
}

// ManagedAccounts lists every sub-account the create-accounts recipe is
// responsible for, in creation order.
func (p NetworkProfile) ManagedAccounts() []string {
	return []string{
		p.FactoryAccount(),
		p.MinterAccount + "." + p.AccountPrefix,
	}
}

// EnvOverlay returns the environment variables injected into every
// subprocess the supervisor spawns on behalf of this profile.
func (p NetworkProfile) EnvOverlay() []string {
	return []string{
		"NEAR_ENV=" + p.Name,
		"NEAR_RPC_URL=" + p.RPCEndpoint,
		"NEAR_HELPER_URL=" + p.HelperURL,
		"NEAR_CREDENTIALS_DIR=" + p.CredentialsDir,
		"POSTGRES_USER=" + p.Database.User,
		"POSTGRES_PASSWORD=" + p.Database.Password,
		"POSTGRES_HOST=" + p.Database.Host,
		fmt.Sprintf("POSTGRES_PORT=%d", p.Database.Port),
		"POSTGRES_DATABASE=" + p.Database.Name,
		"DATABASE_URL=" + p.Database.DSN(),
	}
}
