package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var nameChars = regexp.MustCompile(`[^a-z0-9_]+`)

func main() {
	dir := flag.String("dir", filepath.Join("db", "migrations"), "migrations directory")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatal("usage: migrate-create [-dir path] <name>")
	}
	name := nameChars.ReplaceAllString(strings.ToLower(flag.Arg(0)), "_")
	name = strings.Trim(name, "_")
	if name == "" {
		log.Fatal("migration name is empty after sanitizing")
	}

	if err := os.MkdirAll(*dir, 0o755); err != nil {
		log.Fatalf("create migrations dir: %v", err)
	}

	base := time.Now().UTC().Format("20060102150405") + "_" + name
	for _, suffix := range []string{".up.sql", ".down.sql"} {
		path := filepath.Join(*dir, base+suffix)
		if _, err := os.Stat(path); err == nil {
			log.Fatalf("already exists: %s", path)
		} else if !os.IsNotExist(err) {
			log.Fatalf("stat %s: %v", path, err)
		}
		stub := fmt.Sprintf("-- %s%s\n", name, suffix)
		if err := os.WriteFile(path, []byte(stub), 0o644); err != nil {
			log.Fatalf("write %s: %v", path, err)
		}
		log.Printf("created %s", path)
	}
}
