package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"bachelor-sync/internal/config"
	"bachelor-sync/internal/export"
	"bachelor-sync/internal/sftpclient"
)

// exportcsv re-emits a normalized program csv under a delivery name and
// optionally drops it on the partner SFTP server. Reading through the
// export layer validates the file before anything leaves the machine.
func main() {
	var (
		inPath     = flag.String("in", "programs.csv", "normalized program csv")
		outPath    = flag.String("out", "BACHELOR-PROGRAMS_ALL.csv", "delivery csv path")
		uploadSFTP = flag.Bool("sftp", false, "upload the generated CSV via SFTP")
	)
	flag.Parse()

	rootCtx, rootCancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer rootCancel()

	cfg := config.Load()

	if dir := filepath.Dir(*outPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatal(err)
		}
	}

	programs, err := export.ReadProgramCSVFile(*inPath)
	if err != nil {
		log.Fatal(err)
	}

	if err := export.WriteProgramCSVFile(*outPath, programs); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %d programs to %s", len(programs), *outPath)

	if *uploadSFTP {
		remoteName := filepath.Base(*outPath)

		upCfg := sftpclient.Config{
			Host:                  cfg.SFTPHost,
			Port:                  cfg.SFTPPort,
			User:                  cfg.SFTPUser,
			Pass:                  cfg.SFTPPass,
			RemoteDir:             cfg.SFTPDir,
			InsecureIgnoreHostKey: cfg.SFTPInsecureIgnoreHostKey,
			KnownHostsFile:        cfg.SFTPKnownHosts,
		}

		upCtx, upCancel := context.WithTimeout(rootCtx, 5*time.Minute)
		defer upCancel()

		if err := sftpclient.UploadFile(upCtx, upCfg, *outPath, remoteName); err != nil {
			log.Fatal(err)
		}
		log.Printf("uploaded to sftp://%s:%d%s/%s", upCfg.Host, upCfg.Port, upCfg.RemoteDir, remoteName)
	}
}
