// Command csvupload sends CSV files to a csvdrop server through the same
// upload queue the browser client uses: one request per accepted file, all
// in flight at once.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/prappser/csvdrop/internal"
	"github.com/prappser/csvdrop/internal/uploadclient"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

const defaultServer = "http://localhost:8080"

func main() {
	server := pflag.StringP("server", "s", defaultServer, "base URL of the csvdrop server")
	verbose := pflag.BoolP("verbose", "v", false, "log every upload status change")
	pflag.Parse()

	_ = godotenv.Load()
	if env := os.Getenv("CSVDROP_SERVER_URL"); env != "" && !pflag.CommandLine.Changed("server") {
		*server = env
	}

	level := "info"
	if *verbose {
		level = "debug"
	}
	internal.ConfigureLogging(internal.LogConfig{Level: level, Pretty: true})

	paths := pflag.Args()
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "usage: csvupload [--server URL] file...")
		os.Exit(2)
	}

	os.Exit(run(*server, paths))
}

func run(server string, paths []string) int {
	exitCode := 0

	handles := make([]uploadclient.FileHandle, 0, len(paths))
	for _, path := range paths {
		file, err := uploadclient.NewDiskFile(path)
		if err != nil {
			log.Error().Err(err).Str("path", path).Msg("Skipping file")
			exitCode = 1
			continue
		}
		handles = append(handles, file)
	}

	queue := uploadclient.NewQueue(
		uploadclient.NewHTTPUploader(server, nil),
		uploadclient.WithStatusHook(func(f uploadclient.TrackedFile, s uploadclient.UploadStatus) {
			log.Debug().Str("fileName", f.Name).Str("status", string(s.State)).Int("progress", s.Progress).Msg("Status changed")
		}),
	)

	result := queue.Intake(context.Background(), handles)
	if notice := queue.Notice(); notice != "" {
		fmt.Println(notice)
	}
	if result.Rejected() > 0 {
		exitCode = 1
	}

	queue.Wait()

	for _, f := range queue.Files() {
		status, _ := queue.Status(f.ID)
		fmt.Printf("%-10s %s (%d KB)\n", status.State, f.Name, (f.Size+512)/1024)
		if status.State == uploadclient.StateError {
			exitCode = 1
		}
	}
	return exitCode
}
