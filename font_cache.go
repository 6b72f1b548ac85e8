package pictemplate

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// FontCache resolves font identifiers to parsed TrueType/OpenType fonts.
// It searches system font directories and user-specified directories for
// .ttf, .otf and .ttc files. Parsed fonts are shared; faces are created per
// call because a font.Face must not be used from several goroutines.
type FontCache struct {
	mu      sync.RWMutex
	dirs    []string                  // directories to search for fonts
	fonts   map[string]*opentype.Font // lowercase font name -> parsed font
	scanned bool
}

// NewFontCache creates a FontCache that searches the given directories
// plus the OS default font directories.
func NewFontCache(extraDirs ...string) *FontCache {
	dirs := append(systemFontDirs(), extraDirs...)
	return &FontCache{
		dirs:  dirs,
		fonts: make(map[string]*opentype.Font),
	}
}

var (
	defaultFontOnce sync.Once
	defaultFont     *opentype.Font
)

// fallbackFont returns the embedded Go Regular font, or nil if it cannot
// be parsed.
func fallbackFont() *opentype.Font {
	defaultFontOnce.Do(func() {
		f, err := opentype.Parse(goregular.TTF)
		if err != nil {
			Logger().Warn("cannot parse embedded font", "error", err)
			return
		}
		defaultFont = f
	})
	return defaultFont
}

// Font resolves a font identifier: a path to a font file, a font file base
// name or family name found in the searched directories. Unknown or empty
// identifiers resolve to the embedded Go Regular font.
func (fc *FontCache) Font(id string) *opentype.Font {
	id = strings.TrimSpace(id)
	if id == "" {
		return fallbackFont()
	}

	if isFontFile(id) {
		key := strings.ToLower(id)
		fc.mu.RLock()
		f, ok := fc.fonts[key]
		fc.mu.RUnlock()
		if ok {
			return f
		}
		if _, err := os.Stat(id); err == nil {
			if err := fc.LoadFont(id, id); err != nil {
				Logger().Warn("cannot load font file", "path", id, "error", err)
				return fallbackFont()
			}
			fc.mu.RLock()
			f = fc.fonts[key]
			fc.mu.RUnlock()
			return f
		}
		id = strings.TrimSuffix(filepath.Base(id), filepath.Ext(id))
	}

	fc.ensureScanned()
	fc.mu.RLock()
	f, ok := fc.fonts[strings.ToLower(id)]
	fc.mu.RUnlock()
	if ok {
		return f
	}
	Logger().Debug("font not found, using default", "font", id)
	return fallbackFont()
}

// FitFace returns a face of the largest size at which text fits inside a
// w×h box. The caller owns the face.
func (fc *FontCache) FitFace(id, text string, w, h int) font.Face {
	f := fc.Font(id)
	if f == nil {
		return basicfont.Face7x13
	}

	var best font.Face
	lo, hi := 1, max(1, 2*h)
	for lo <= hi {
		mid := (lo + hi) / 2
		face, err := newFace(f, float64(mid))
		if err != nil {
			break
		}
		box := measureText(face, text)
		if box.offsetX+box.width <= w && box.height <= h {
			if best != nil {
				best.Close()
			}
			best = face
			lo = mid + 1
		} else {
			face.Close()
			hi = mid - 1
		}
	}
	if best == nil {
		face, err := newFace(f, 1)
		if err != nil {
			return basicfont.Face7x13
		}
		best = face
	}
	return best
}

func newFace(f *opentype.Font, sizePx float64) (font.Face, error) {
	// At 72 DPI one point is one pixel.
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    sizePx,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// textBox holds the rendered extent of a string in whole pixels.
//
// offsetX and offsetY locate the top-left corner of the ink relative to the
// pen origin and the top of the line; height spans from the top of the line
// to the bottom of the ink.
type textBox struct {
	width   int // ink width
	height  int
	offsetX int
	offsetY int
	ascent  int
}

func measureText(face font.Face, s string) textBox {
	bounds, _ := font.BoundString(face, s)
	ascent := face.Metrics().Ascent.Ceil()
	if bounds.Empty() {
		return textBox{height: ascent, offsetY: ascent, ascent: ascent}
	}
	offX := bounds.Min.X.Floor()
	offY := max(0, ascent+bounds.Min.Y.Floor())
	inkH := bounds.Max.Y.Ceil() - bounds.Min.Y.Floor()
	return textBox{
		width:   bounds.Max.X.Ceil() - offX,
		height:  offY + inkH,
		offsetX: offX,
		offsetY: offY,
		ascent:  ascent,
	}
}

// textOrigin returns the pen position that places s inside a w×h box with
// the given horizontal alignment, vertically centered. Both axes are
// corrected by half the glyph origin offsets so that centering follows the
// ink rather than the line box.
func textOrigin(box textBox, w, h int, align Alignment) fixed.Point26_6 {
	x := 0
	switch align {
	case AlignCenter:
		x = floorDiv(w-box.width, 2)
	case AlignRight:
		x = w - box.width
	}
	top := floorDiv(h-box.height, 2) - floorDiv(box.offsetY, 2)
	return fixed.P(x-floorDiv(box.offsetX, 2), top+box.ascent)
}

// LoadFont loads a TrueType/OpenType font file and registers it under the
// given name. Returns an error if the file exceeds maxFontFileSize.
func (fc *FontCache) LoadFont(name string, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Size() > maxFontFileSize {
		return fmt.Errorf("font file too large: %d bytes (max %d)", info.Size(), maxFontFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if isCollection(path) {
		coll, err := opentype.ParseCollection(data)
		if err != nil {
			return err
		}
		if coll.NumFonts() == 0 {
			return fmt.Errorf("font collection %s is empty", path)
		}
		f, err := coll.Font(0)
		if err != nil {
			return err
		}
		fc.register(name, f)
		return nil
	}
	return fc.LoadFontData(name, data)
}

// LoadFontData registers a TrueType/OpenType font from raw bytes.
func (fc *FontCache) LoadFontData(name string, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return err
	}
	fc.register(name, f)
	return nil
}

func (fc *FontCache) register(name string, f *opentype.Font) {
	fc.mu.Lock()
	fc.fonts[strings.ToLower(name)] = f
	fc.registerByFamilyName(f)
	fc.mu.Unlock()
}

func (fc *FontCache) ensureScanned() {
	fc.mu.RLock()
	scanned := fc.scanned
	fc.mu.RUnlock()
	if scanned {
		return
	}

	fc.mu.Lock()
	defer fc.mu.Unlock()
	if fc.scanned {
		return
	}
	fc.scanned = true

	for _, dir := range fc.dirs {
		fc.scanDirDepth(dir, 0)
	}
}

// maxFontScanDepth limits recursive directory traversal when scanning for fonts.
const maxFontScanDepth = 3

// maxFontFileSize limits the size of individual font files loaded into memory.
const maxFontFileSize = 20 << 20 // 20 MB

func isFontFile(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".ttf") || strings.HasSuffix(lower, ".otf") || isCollection(lower)
}

func isCollection(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".ttc") || strings.HasSuffix(lower, ".otc")
}

// scanDirDepth registers every font found under dir. Callers hold fc.mu.
func (fc *FontCache) scanDirDepth(dir string, depth int) {
	if depth > maxFontScanDepth {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			fc.scanDirDepth(filepath.Join(dir, entry.Name()), depth+1)
			continue
		}
		name := entry.Name()
		if !isFontFile(name) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.Size() > maxFontFileSize {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		lower := strings.ToLower(name)
		if isCollection(lower) {
			fc.loadCollection(data, lower)
		} else {
			fc.loadSingleFont(data, lower)
		}
	}
}

// loadSingleFont parses a single TTF/OTF font and registers it by both
// file base name and internal family name.
func (fc *FontCache) loadSingleFont(data []byte, lowerFilename string) {
	f, err := opentype.Parse(data)
	if err != nil {
		return
	}
	baseName := strings.TrimSuffix(lowerFilename, filepath.Ext(lowerFilename))
	fc.fonts[baseName] = f
	fc.registerByFamilyName(f)
}

// loadCollection parses a TTC/OTC font collection and registers each font
// by its internal family name, the first one also by file base name.
func (fc *FontCache) loadCollection(data []byte, lowerFilename string) {
	coll, err := opentype.ParseCollection(data)
	if err != nil {
		return
	}
	for i := 0; i < coll.NumFonts(); i++ {
		f, err := coll.Font(i)
		if err != nil {
			continue
		}
		if i == 0 {
			baseName := strings.TrimSuffix(lowerFilename, filepath.Ext(lowerFilename))
			fc.fonts[baseName] = f
		}
		fc.registerByFamilyName(f)
	}
}

// registerByFamilyName registers f under its family and full names.
// Callers hold fc.mu.
func (fc *FontCache) registerByFamilyName(f *opentype.Font) {
	if familyName, err := f.Name(nil, sfnt.NameIDFamily); err == nil && familyName != "" {
		fc.fonts[strings.ToLower(familyName)] = f
	}
	if fullName, err := f.Name(nil, sfnt.NameIDFull); err == nil && fullName != "" {
		fc.fonts[strings.ToLower(fullName)] = f
	}
}

// systemFontDirs returns OS-specific font directories.
func systemFontDirs() []string {
	switch runtime.GOOS {
	case "windows":
		windir := os.Getenv("WINDIR")
		if windir == "" {
			windir = `C:\Windows`
		}
		dirs := []string{filepath.Join(windir, "Fonts")}
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			dirs = append(dirs, filepath.Join(localAppData, "Microsoft", "Windows", "Fonts"))
		}
		return dirs
	case "darwin":
		home, _ := os.UserHomeDir()
		dirs := []string{"/System/Library/Fonts", "/Library/Fonts"}
		if home != "" {
			dirs = append(dirs, filepath.Join(home, "Library", "Fonts"))
		}
		return dirs
	default: // linux, freebsd, etc.
		home, _ := os.UserHomeDir()
		dirs := []string{"/usr/share/fonts", "/usr/local/share/fonts"}
		if home != "" {
			dirs = append(dirs, filepath.Join(home, ".local", "share", "fonts"), filepath.Join(home, ".fonts"))
		}
		return dirs
	}
}
