// (c) 2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	log "github.com/inconshreveable/log15"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ava-labs/avalanchego/ids"
)

const (
	versionKey     = "version"
	httpHostKey    = "http-host"
	httpPortKey    = "http-port"
	ownerKey       = "owner"
	logLevelKey    = "log-level"
	bootstrapKey   = "bootstrap"
	genesisTimeKey = "genesis-time"

	envPrefix = "diamondvm"
)

var errMissingOwner = errors.New("--owner is required")

// Config is the node configuration
type Config struct {
	Version   bool
	HTTPHost  string
	HTTPPort  uint16
	Owner     ids.ShortID
	LogLevel  log.Lvl
	Bootstrap bool
	// GenesisTime pins the block clock when non-zero
	GenesisTime time.Time
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.HTTPHost, c.HTTPPort)
}

func buildFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("diamondvm", flag.ContinueOnError)

	fs.Bool(versionKey, false, "If true, prints the version and quits")
	fs.String(httpHostKey, "127.0.0.1", "Address of the HTTP server")
	fs.Uint(httpPortKey, 9650, "Port of the HTTP server")
	fs.String(ownerKey, "", "Address of the diamond owner")
	fs.String(logLevelKey, "info", "Log level: crit, error, warn, info or debug")
	fs.Bool(bootstrapKey, true, "If true, cuts in the loupe and the ledger at start")
	fs.Int64(genesisTimeKey, 0, "Unix time to pin the block clock to, 0 uses the wall clock")

	return fs
}

// getViper returns the viper environment for the node binary
func getViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs := buildFlagSet()
	pflag.CommandLine.AddGoFlagSet(fs)
	pflag.Parse()
	if err := v.BindPFlags(pflag.CommandLine); err != nil {
		return nil, err
	}

	return v, nil
}

func getConfig() (Config, error) {
	v, err := getViper()
	if err != nil {
		return Config{}, err
	}
	return parseConfig(v)
}

func parseConfig(v *viper.Viper) (Config, error) {
	var (
		config = Config{
			Version:   v.GetBool(versionKey),
			HTTPHost:  v.GetString(httpHostKey),
			Bootstrap: v.GetBool(bootstrapKey),
		}
		err error
	)
	if config.Version {
		return config, nil
	}

	port := v.GetUint(httpPortKey)
	if port > 65535 {
		return Config{}, fmt.Errorf("invalid %s: %d", httpPortKey, port)
	}
	config.HTTPPort = uint16(port)

	ownerStr := v.GetString(ownerKey)
	if ownerStr == "" {
		return Config{}, errMissingOwner
	}
	config.Owner, err = ids.ShortFromString(ownerStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid %s %q: %w", ownerKey, ownerStr, err)
	}

	config.LogLevel, err = log.LvlFromString(v.GetString(logLevelKey))
	if err != nil {
		return Config{}, err
	}

	if genesis := v.GetInt64(genesisTimeKey); genesis != 0 {
		config.GenesisTime = time.Unix(genesis, 0)
	}
	return config, nil
}
