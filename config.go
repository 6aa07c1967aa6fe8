package main

import (
	"fmt"
	"sort"
)

type ConfigCommand struct {
	System bool `short:"s" long:"system" description:"Modify system level configuration."`
	Unset  bool `short:"u" long:"unset" description:"Unset key."`
	List   bool `short:"l" long:"list" description:"List current config values, including .env and environment overrides."`
	Args   struct {
		Key   string `description:"Configuration key, as section.name." positional-arg-name:"key"`
		Value string `description:"Configuration value. (optional)" positional-arg-name:"value"`
	} `positional-args:"yes"`
}

var configCommand ConfigCommand

// Execute handles setting, getting, and listing configuration values.
func (x *ConfigCommand) Execute(args []string) error {
	system := &DefaultSystem{}
	conf, err := NewDefaultConfigClient(system)
	if err != nil {
		return err
	}

	return runConfig(configCommand, conf, system)
}

func runConfig(cmd ConfigCommand, conf ConfigClient, system System) error {
	if cmd.List {
		all, err := conf.GetAll()
		if err != nil {
			return err
		}

		keys := make([]string, 0, len(all))
		for k := range all {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			system.Stdoutf("%s = %s\n", k, all[k])
		}
		return nil
	}

	if len(cmd.Args.Key) == 0 {
		return fmt.Errorf("a configuration key is required")
	}

	if cmd.Unset {
		return conf.Unset(cmd.System, cmd.Args.Key)
	}

	if len(cmd.Args.Value) > 0 {
		return conf.Set(cmd.System, cmd.Args.Key, cmd.Args.Value)
	}

	val, err := conf.Get(cmd.Args.Key)
	if err != nil {
		return err
	}
	system.Stdoutf("%s\n", val)
	return nil
}

func init() {
	_, err := parser.AddCommand("config",
		"Set and get configuration.",
		"",
		&configCommand)

	if err != nil {
		fmt.Println(err)
	}
}
