// Command dmd downloads minecraft-data for one platform and version. The
// attributes.json it contains can be imported with the server's -game-data
// flag.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	get "github.com/hashicorp/go-getter"
)

func main() {
	var (
		base     = flag.String("base", "https://github.com/PrismarineJS/minecraft-data.git", "base url")
		platform = flag.String("platform", "pc", "platform of schemas")
		ver      = flag.String("version", "1.21.8", "version of schemas")
		out      = flag.String("o", "./scheme", "output dir path")
	)
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := run(*base, *platform, *ver, *out, log); err != nil {
		log.Error("download minecraft-data", "error", err)
		os.Exit(1)
	}
}

func run(base, platform, ver, out string, log *slog.Logger) error {
	switch {
	case out == "":
		return fmt.Errorf("output dir path required")
	case platform == "":
		return fmt.Errorf("platform required")
	case ver == "":
		return fmt.Errorf("version required")
	}

	path := filepath.Join(out, platform+"-"+ver)
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("clean %s: %w", path, err)
	}

	log.Info("start downloading schemes", "path", path)

	// https://github.com/PrismarineJS/minecraft-data/tree/master/data/pc/1.21.8
	url := fmt.Sprintf("git::%s//data/%s/%s", base, platform, ver)
	if err := get.Get(path, url); err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}

	attrs := filepath.Join(path, "attributes.json")
	if _, err := os.Stat(attrs); err != nil {
		log.Warn("version has no attributes.json", "path", attrs)
	} else {
		log.Info("attributes available", "file", attrs)
	}

	log.Info("done downloading schemes", "path", path)
	return nil
}
