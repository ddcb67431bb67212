package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// defaultNetworksHCL defines the three recognized networks. A networks.hcl
// file, when present, overrides individual networks block by block.
const defaultNetworksHCL = `
network "local" {
  rpc_endpoint       = "http://127.0.0.1:3030"
  helper_url         = ""
  account_prefix     = "test.near"
  root_account       = "test.near"
  store_name         = "teststore"
  minter_account     = "minter"
  credentials_dir    = "${home}/.near/local"
  indexer_health_url = "http://127.0.0.1:3034/healthz"
}

network "testnet" {
  rpc_endpoint       = "https://rpc.testnet.near.org"
  helper_url         = "https://helper.testnet.near.org"
  account_prefix     = "testnet"
  root_account       = "testnet"
  store_name         = "teststore"
  minter_account     = "minter"
  credentials_dir    = "${home}/.near-credentials/testnet"
  indexer_health_url = "http://127.0.0.1:3034/healthz"
}

network "mainnet" {
  rpc_endpoint       = "https://rpc.mainnet.near.org"
  helper_url         = "https://helper.mainnet.near.org"
  account_prefix     = "near"
  root_account       = "near"
  store_name         = "store"
  minter_account     = "minter"
  credentials_dir    = "${home}/.near-credentials/mainnet"
  indexer_health_url = "http://127.0.0.1:3034/healthz"
}
`

// networksFile mirrors the HCL schema of networks.hcl.
type networksFile struct {
	Networks []networkBlock `hcl:"network,block"`
}

type networkBlock struct {
	Name             string `hcl:"name,label"`
	RPCEndpoint      string `hcl:"rpc_endpoint"`
	HelperURL        string `hcl:"helper_url,optional"`
	AccountPrefix    string `hcl:"account_prefix"`
	RootAccount      string `hcl:"root_account,optional"`
	StoreName        string `hcl:"store_name,optional"`
	MinterAccount    string `hcl:"minter_account,optional"`
	CredentialsDir   string `hcl:"credentials_dir,optional"`
	ContractsDir     string `hcl:"contracts_dir,optional"`
	ArtifactsDir     string `hcl:"artifacts_dir,optional"`
	IndexerBin       string `hcl:"indexer_bin,optional"`
	IndexerHealthURL string `hcl:"indexer_health_url,optional"`
}

// evalContext exposes the variables network blocks may interpolate.
func evalContext() *hcl.EvalContext {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"home": cty.StringVal(home),
		},
	}
}

// loadNetworks parses the built-in definitions and, if path names an existing
// file, merges its blocks on top. The result is keyed by network name.
func loadNetworks(path string) (map[string]networkBlock, error) {
	parser := hclparse.NewParser()
	evalCtx := evalContext()

	networks := make(map[string]networkBlock)

	decodeInto := func(file *hcl.File, origin string) error {
		var parsed networksFile
		if diags := gohcl.DecodeBody(file.Body, evalCtx, &parsed); diags.HasErrors() {
			return &InvalidFileError{Path: origin, Err: diags}
		}
		for _, block := range parsed.Networks {
			networks[block.Name] = block
		}
		return nil
	}

	builtin, diags := parser.ParseHCL([]byte(defaultNetworksHCL), "builtin/networks.hcl")
	if diags.HasErrors() {
		return nil, fmt.Errorf("built-in network definitions are malformed: %w", diags)
	}
	if err := decodeInto(builtin, "builtin/networks.hcl"); err != nil {
		return nil, err
	}

	if path == "" {
		return networks, nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return networks, nil
		}
		return nil, &InvalidFileError{Path: path, Err: err}
	}
	file, diags := parser.ParseHCL(src, path)
	if diags.HasErrors() {
		return nil, &InvalidFileError{Path: path, Err: diags}
	}
	if err := decodeInto(file, path); err != nil {
		return nil, err
	}
	return networks, nil
}
