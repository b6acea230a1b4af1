package main

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/tdjsnelling/babel"
)

const defaultConfigFile = "babel.json"

type config struct {
	Library   babel.Config           `json:"library"`
	Constants string                 `json:"constants"`
	Bookmarks map[string]interface{} `json:"bookmarks"`
	LogLevel  string                 `json:"log_level"`
	Addr      string                 `json:"addr"`
	RPCAddr   string                 `json:"rpc_addr"`
	CacheSize int                    `json:"cache_size"`
}

func defaultConfig() *config {
	return &config{
		Library:   babel.DefaultConfig(),
		Constants: "numbers",
		Bookmarks: map[string]interface{}{"type": "mem"},
		LogLevel:  "info",
		Addr:      ":3000",
		RPCAddr:   ":2969",
	}
}

// loadConfig reads the config file at filename over the defaults.
// A missing default config file is not an error.
func loadConfig(filename string) (*config, error) {
	conf := defaultConfig()

	f, err := os.Open(filename)
	if os.IsNotExist(err) && filename == defaultConfigFile {
		return conf, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "opening config file %s", filename)
	}
	defer f.Close()

	// Decoding would merge into the default map.
	conf.Bookmarks = nil

	dec := json.NewDecoder(f)
	dec.UseNumber()
	if err = dec.Decode(conf); err != nil {
		return nil, errors.Wrapf(err, "decoding config file %s", filename)
	}
	if conf.Bookmarks == nil {
		conf.Bookmarks = defaultConfig().Bookmarks
	}
	if err = conf.Library.Validate(); err != nil {
		return nil, errors.Wrapf(err, "in config file %s", filename)
	}
	return conf, nil
}

// storeConfig reads a bookmark store configuration on its own,
// as the "bookmarks" object of a config file would hold it.
func storeConfig(filename string) (map[string]interface{}, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "opening store config file %s", filename)
	}
	defer f.Close()

	var conf map[string]interface{}
	dec := json.NewDecoder(f)
	dec.UseNumber()
	if err = dec.Decode(&conf); err != nil {
		return nil, errors.Wrapf(err, "decoding store config file %s", filename)
	}
	if _, ok := conf["type"].(string); !ok {
		return nil, errors.Errorf("store config file %s missing `type` parameter", filename)
	}
	return conf, nil
}
