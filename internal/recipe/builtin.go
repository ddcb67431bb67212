package recipe

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/vk/chainrig/internal/config"
	"github.com/vk/chainrig/internal/fingerprint"
)

// Recipe names as exposed on the CLI.
const (
	BuildContracts = "build-contracts"
	CreateAccounts = "create-accounts"
	Deploy         = "deploy"
	CreateStore    = "create-store"
	RunIndexer     = "run-indexer"
)

// indexerStartupTimeout bounds how long run-indexer waits for the readiness
// probe before reporting a startup failure.
const indexerStartupTimeout = 30 * time.Second

// Builtin returns the registry with the fixed recipe set. The definitions are
// static; a failure to validate them is a programming error, so this panics.
func Builtin() *Registry {
	r, err := New(
		buildContracts(),
		createAccounts(),
		deploy(),
		createStore(),
		runIndexer(),
	)
	if err != nil {
		panic(fmt.Errorf("built-in recipe set is invalid: %w", err))
	}
	return r
}

func buildContracts() *Recipe {
	return &Recipe{
		Name:        BuildContracts,
		Description: "Compile the store and factory contracts to wasm.",
		Steps: func(p *config.NetworkProfile) []Step {
			return []Step{{
				Name:    "cargo-build",
				Command: "cargo",
				Args:    []string{"build", "--target", "wasm32-unknown-unknown", "--release"},
				Dir:     p.ContractsDir,
				Timeout: 15 * time.Minute,
			}}
		},
		Inputs: func(p *config.NetworkProfile) []fingerprint.Source {
			return []fingerprint.Source{
				{Key: "sources", Path: p.ContractsDir, Ext: ".rs"},
				{Key: "manifests", Path: p.ContractsDir, Ext: ".toml"},
				{Key: "lockfile", Path: filepath.Join(p.ContractsDir, "Cargo.lock")},
			}
		},
	}
}

func createAccounts() *Recipe {
	return &Recipe{
		Name:        CreateAccounts,
		Description: "Provision the factory and minter accounts under the network prefix.",
		Steps: func(p *config.NetworkProfile) []Step {
			steps := make([]Step, 0, len(p.ManagedAccounts()))
			for _, account := range p.ManagedAccounts() {
				steps = append(steps, Step{
					Name:    "create-" + account,
					Command: "near",
					Args: []string{
						"create-account", account,
						"--masterAccount", p.RootAccount,
						"--initialBalance", "10",
					},
					Timeout: 2 * time.Minute,
				})
			}
			return steps
		},
		Inputs: func(p *config.NetworkProfile) []fingerprint.Source {
			return []fingerprint.Source{
				{Key: "network", Value: p.Name},
				{Key: "accounts", Value: strings.Join(p.ManagedAccounts(), ",")},
			}
		},
	}
}

func deploy() *Recipe {
	return &Recipe{
		Name:        Deploy,
		Description: "Deploy the built factory contract to the resolved network.",
		Requires:    []string{BuildContracts, CreateAccounts},
		Steps: func(p *config.NetworkProfile) []Step {
			return []Step{{
				Name:    "deploy-factory",
				Command: "near",
				Args: []string{
					"deploy",
					"--accountId", p.FactoryAccount(),
					"--wasmFile", filepath.Join(p.ArtifactsDir, "factory.wasm"),
				},
				Timeout: 5 * time.Minute,
			}}
		},
		Inputs: func(p *config.NetworkProfile) []fingerprint.Source {
			return []fingerprint.Source{
				{Key: "artifacts", Path: p.ArtifactsDir, Ext: ".wasm"},
				{Key: "accounts", Value: strings.Join(p.ManagedAccounts(), ",")},
			}
		},
	}
}

func createStore() *Recipe {
	return &Recipe{
		Name:        CreateStore,
		Description: "Instantiate a store contract through the deployed factory.",
		Requires:    []string{Deploy},
		Steps: func(p *config.NetworkProfile) []Step {
			args := fmt.Sprintf(
				`{"owner_id":%q,"metadata":{"spec":"nft-1.0.0","name":%q,"symbol":"MINT"},"minters":[%q]}`,
				p.RootAccount, p.StoreName, p.MinterAccount+"."+p.AccountPrefix,
			)
			return []Step{{
				Name:    "create-store",
				Command: "near",
				Args: []string{
					"call", p.FactoryAccount(), "create_store", args,
					"--accountId", p.RootAccount,
					"--deposit", "7",
				},
				Timeout: 5 * time.Minute,
			}}
		},
		Inputs: func(p *config.NetworkProfile) []fingerprint.Source {
			return []fingerprint.Source{
				{Key: "store", Value: p.StoreAccount()},
				{Key: "minter", Value: p.MinterAccount + "." + p.AccountPrefix},
				{Key: "artifacts", Path: p.ArtifactsDir, Ext: ".wasm"},
			}
		},
	}
}

func runIndexer() *Recipe {
	return &Recipe{
		Name:        RunIndexer,
		Description: "Start the local indexer and wait until it reports ready.",
		Volatile:    true,
		Steps: func(p *config.NetworkProfile) []Step {
			return []Step{{
				Name:     "start-indexer",
				Command:  p.IndexerBin,
				Args:     []string{"--network", p.Name, "--database-url", p.Database.DSN()},
				Timeout:  indexerStartupTimeout,
				Detach:   true,
				ReadyURL: p.IndexerHealthURL,
			}}
		},
	}
}
