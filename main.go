/*
Prism is a real-time glTF model viewer. Drop a .gltf or .glb file on the
window to load it.

	prism [-config assets/prism.toml] [model.glb]
*/
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/prism/engine"
	"github.com/spaghettifunk/prism/engine/config"
	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/frame"
)

func main() {
	configPath := flag.String("config", "assets/prism.toml", "path of the TOML configuration")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		core.LogFatal("configuration: %s", err)
	}
	if flag.NArg() > 0 {
		cfg.Assets.Path = flag.Arg(0)
	}

	viewer, err := engine.Bootstrap(cfg)
	if frame.IsAborted(err) {
		core.LogInfo("closed before the first frame")
		return
	}
	if err != nil {
		core.LogFatal("startup failed: %s", err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	go func() {
		<-sigCh
		viewer.Stop()
	}()

	if err := viewer.Run(); err != nil {
		core.LogFatal("viewer stopped: %s", err)
	}
}
