// Command pictemplate composes captures into a picture using a draw.io
// template file.
//
// Usage:
//
//	pictemplate [flags] capture1.jpg [capture2.jpg ...]
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	pictemplate "github.com/VantageDataChat/GoPictureTemplate"
)

// textFlags collects repeated -text values.
type textFlags []string

func (t *textFlags) String() string { return strings.Join(*t, ",") }

func (t *textFlags) Set(v string) error {
	*t = append(*t, v)
	return nil
}

func main() {
	var (
		configPath  = flag.String("config", "", "YAML configuration file")
		template    = flag.String("template", "", "template file (default: built-in template)")
		orientation = flag.String("orientation", "", "auto, portrait or landscape")
		crop        = flag.Bool("crop", false, "crop captures to fill their slots")
		outlines    = flag.Bool("outlines", false, "also write a copy with slot outlines")
		output      = flag.String("o", "picture.png", "output image path; a .png/.jpg/.jpeg extension overrides output.format")
		reset       = flag.Bool("reset", false, "rewrite the template file with the built-in template")
		check       = flag.Bool("check", false, "parse and validate the template, then exit")
		export      = flag.String("export", "", "write the normalized template document to this path, then exit")
		verbose     = flag.Bool("v", false, "verbose logging")
		texts       textFlags
	)
	flag.Var(&texts, "text", "text for the next text slot (repeatable)")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	pictemplate.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg := pictemplate.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = pictemplate.LoadConfigFile(*configPath)
		if err != nil {
			fatalf("config: %v", err)
		}
	}
	if *template != "" {
		cfg.Template = *template
	}
	if *orientation != "" {
		cfg.Orientation = *orientation
	}
	if *crop {
		cfg.CapturesCropping = true
	}
	if *outlines {
		cfg.Outlines = true
	}
	for i, t := range texts {
		cfg.SetText(i, t)
	}
	if err := cfg.Validate(); err != nil {
		fatalf("config: %v", err)
	}

	if *reset {
		if cfg.Template == "" {
			fatalf("-reset needs a template path")
		}
		if _, err := pictemplate.EnsureTemplate(cfg.Template, true); err != nil {
			fatalf("reset template: %v", err)
		}
		fmt.Printf("Template written to %s\n", cfg.Template)
		if !*check && flag.NArg() == 0 {
			return
		}
	}

	idx, err := pictemplate.Load(cfg.Template)
	if err != nil {
		fatalf("template: %v", err)
	}
	if *export != "" {
		if err := exportTemplate(idx, *export); err != nil {
			fatalf("export: %v", err)
		}
		fmt.Printf("Template exported to %s\n", *export)
		return
	}
	if *check {
		if err := idx.Validate(); err != nil {
			fatalf("%v", err)
		}
		info := idx.Info()
		fmt.Printf("Document: host=%s version=%s pages=%d\n", info.Host, info.Version, info.Pages)
		for _, t := range idx.Templates() {
			fmt.Printf("%-10s %-9s captures=%d size=%dx%d shapes=%d\n",
				t.Name, t.Orientation, t.CaptureCount, t.Width, t.Height, len(t.Shapes()))
		}
		return
	}

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: pictemplate [flags] capture1 [capture2 ...]")
		flag.PrintDefaults()
		os.Exit(2)
	}
	images := make([]image.Image, 0, flag.NArg())
	for _, path := range flag.Args() {
		img, err := pictemplate.LoadImage(path)
		if err != nil {
			fatalf("%v", err)
		}
		images = append(images, img)
	}

	o, err := cfg.ResolveOrientation(idx, images)
	if err != nil {
		fatalf("%v", err)
	}
	bg, err := cfg.BackgroundColor()
	if err != nil {
		fatalf("%v", err)
	}
	opts := &pictemplate.CompositeOptions{
		Resize:     cfg.ResizePolicy(),
		Background: bg,
		Fonts:      pictemplate.NewFontCache(cfg.FontDirs...),
	}
	if cfg.Overlay != "" {
		overlay, err := pictemplate.LoadImage(cfg.Overlay)
		if err != nil {
			fatalf("overlay: %v", err)
		}
		opts.Overlay = overlay
	}

	comp, err := pictemplate.NewCompositor(idx, o, images, opts)
	if errors.Is(err, pictemplate.ErrTemplateNotFound) {
		fatalf("no %s template for %d captures (available: %v)", o, len(images), idx.CaptureCounts(o))
	} else if err != nil {
		fatalf("%v", err)
	}
	entries, err := cfg.TextEntries()
	if err != nil {
		fatalf("%v", err)
	}

	picture := comp.Compose(entries)
	format := cfg.OutputFormat(*output)
	if err := pictemplate.SaveImage(picture, *output, format, cfg.Output.JPEGQuality); err != nil {
		fatalf("save: %v", err)
	}
	w, h := comp.Size()
	fmt.Printf("Composed %d captures (%s, %dx%d) to %s\n", len(images), o, w, h, *output)

	if cfg.Outlines {
		path := outlinesPath(*output)
		if err := pictemplate.SaveImage(comp.Outlines(picture), path, format, cfg.Output.JPEGQuality); err != nil {
			fatalf("save outlines: %v", err)
		}
		fmt.Printf("Outlines written to %s\n", path)
	}
}

func exportTemplate(idx *pictemplate.Index, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := idx.Encode(f, false); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func outlinesPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_outlines" + ext
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
