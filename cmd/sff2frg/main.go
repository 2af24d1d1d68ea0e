// Command sff2frg converts one or more SFF files into a single
// assembler-ready fragment-message file (§6).
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Schaudge/sff2frg/filter"
	"github.com/Schaudge/sff2frg/frgfmt"
	"github.com/Schaudge/sff2frg/ingest"
	"github.com/Schaudge/sff2frg/internal/sffcore"
	"github.com/Schaudge/sff2frg/internal/sffio"
	"github.com/Schaudge/sff2frg/library"
	"github.com/Schaudge/sff2frg/linker"
	"github.com/Schaudge/sff2frg/readstore"
)

type options struct {
	libraryName string
	output      string
	logFile     string
	linkerArg   string
	haveInsert  bool
	mean        int
	stddev      int
	inputs      []string
}

func main() {
	opts, ok := parseArgs(os.Args[1:])
	if !ok {
		printUsage()
		os.Exit(1)
	}
	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `usage: sff2frg -libraryname <UID> -output <file.frg>
        [-insertsize <mean> <stddev>]
        [-linker (flx|fix|titanium|<sequence>)]
        [-log <file>]
        <input.sff> [<input.sff> ...]
`)
}

func parseArgs(args []string) (options, bool) {
	var opts options
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-libraryname":
			if i+1 >= len(args) {
				return opts, false
			}
			i++
			opts.libraryName = args[i]
		case "-output":
			if i+1 >= len(args) {
				return opts, false
			}
			i++
			opts.output = args[i]
		case "-log":
			if i+1 >= len(args) {
				return opts, false
			}
			i++
			opts.logFile = args[i]
		case "-insertsize":
			if i+2 >= len(args) {
				return opts, false
			}
			mean, err := strconv.Atoi(args[i+1])
			if err != nil {
				return opts, false
			}
			stddev, err := strconv.Atoi(args[i+2])
			if err != nil {
				return opts, false
			}
			opts.haveInsert = true
			opts.mean, opts.stddev = mean, stddev
			i += 2
		case "-linker":
			if i+1 >= len(args) {
				return opts, false
			}
			i++
			opts.linkerArg = args[i]
		default:
			if strings.HasPrefix(args[i], "-") {
				return opts, false
			}
			opts.inputs = append(opts.inputs, args[i])
		}
	}

	if opts.libraryName == "" || opts.output == "" || len(opts.inputs) == 0 {
		return opts, false
	}
	if opts.linkerArg != "" && !opts.haveInsert {
		return opts, false
	}
	return opts, true
}

func run(opts options) error {
	var ctx sffcore.RunContext
	ctx.LogWriter = os.Stderr
	if opts.logFile != "" {
		f, err := os.Create(opts.logFile)
		if err != nil {
			return sffcore.Wrap(sffcore.IoUnwritable, err, "create log file %s", opts.logFile)
		}
		defer f.Close()
		ctx.LogWriter = f
	}

	linkerProbe := ""
	if opts.linkerArg != "" {
		linkerProbe = library.ResolveLinker(opts.linkerArg)
	}
	ctx.Linker = linkerProbe
	ctx.Library = sffcore.LibraryParams{
		UID:    sffcore.UID(opts.libraryName),
		Mean:   opts.mean,
		StdDev: opts.stddev,
	}
	if linkerProbe != "" {
		ctx.Library.Orientation = sffcore.OrientInnie
	}

	store := readstore.New()
	if err := store.OpenDir(opts.output + ".tmpStore"); err != nil {
		return err
	}

	lastManifest := ""
	for _, path := range opts.inputs {
		ctx.Progressf("loadSFF()-- Loading '%s'", path)
		manifest, err := loadSFF(store, &ctx, path)
		if err != nil {
			return err
		}
		if manifest != "" {
			lastManifest = manifest
		}
	}
	if lastManifest != "" && !strings.Contains(lastManifest, "<qualityScoreVersion>1.1.03</qualityScoreVersion>") {
		ctx.Logf("WARNING: Fragments not rescored!")
	}

	if err := filter.LowQuality(store, &ctx); err != nil {
		return err
	}
	if err := filter.Dedupe(store, &ctx); err != nil {
		return err
	}
	if linkerProbe != "" {
		if err := linker.Split(store, &ctx, linkerProbe); err != nil {
			return err
		}
	}

	lib := library.New(sffcore.UID(opts.libraryName), linkerProbe, opts.mean, opts.stddev)

	out, err := os.Create(opts.output)
	if err != nil {
		return sffcore.Wrap(sffcore.IoUnwritable, err, "create output %s", opts.output)
	}
	if err := frgfmt.Emit(out, store, lib); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return sffcore.Wrap(sffcore.IoUnwritable, err, "close output %s", opts.output)
	}

	return store.RemoveDir()
}

// loadSFF decodes one SFF file into store, returning its manifest text (if
// any) for the rescoring sanity check (§C.2).
func loadSFF(store *readstore.Store, ctx *sffcore.RunContext, path string) (string, error) {
	r, closer, err := sffio.OpenInput(path)
	if err != nil {
		return "", err
	}
	reader, err := sffio.NewReader(r, closer)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return "", err
	}
	defer reader.Close()

	keyLength := int(reader.Header.KeyLength)
	for {
		read, err := reader.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return reader.Manifest, err
		}
		if err := ingest.Read(store, ctx, keyLength, read); err != nil {
			return reader.Manifest, err
		}
	}
	return reader.Manifest, nil
}
