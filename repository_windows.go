//go:build windows
// +build windows

package git

import "github.com/forgevcs/forge/config"

func initConfig(cfg *config.Config) {
	cfg.Core.FileMode = "false"
}
