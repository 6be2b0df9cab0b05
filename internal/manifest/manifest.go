// Package manifest reads the manifest.xml descriptor embedded in zipmod archives.
package manifest

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/beevik/etree"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/attribute"

	"github.com/meza/koikatsu-mod-manager/internal/models"
	"github.com/meza/koikatsu-mod-manager/internal/perf"
)

const (
	manifestFileName = "manifest.xml"
	rootElement      = "manifest"
	// manifests are a few hundred bytes; anything near this is not a manifest
	maxManifestSize = 1 << 20
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Read opens archivePath as a zip and parses its manifest.xml.
func Read(ctx context.Context, fs afero.Fs, archivePath string) (models.Manifest, error) {
	_, span := perf.StartSpan(ctx, "io.manifest.read")
	defer span.End()
	span.SetAttributes(attribute.String("path", archivePath))

	file, err := fs.Open(archivePath)
	if err != nil {
		return models.Manifest{}, fmt.Errorf("failed to open %s: %w", archivePath, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return models.Manifest{}, fmt.Errorf("failed to stat %s: %w", archivePath, err)
	}

	archive, err := zip.NewReader(file, info.Size())
	if err != nil {
		return models.Manifest{}, &InvalidError{Path: archivePath, Reason: "not a zip archive", Err: err}
	}

	entry := findManifestEntry(archive.File)
	if entry == nil {
		return models.Manifest{}, &NotFoundError{Path: archivePath}
	}
	span.SetAttributes(attribute.String("entry", entry.Name))

	contents, err := entry.Open()
	if err != nil {
		return models.Manifest{}, &InvalidError{Path: archivePath, Reason: "cannot open " + entry.Name, Err: err}
	}
	defer contents.Close()

	result, err := Parse(contents)
	if err != nil {
		var invalid *InvalidError
		if errors.As(err, &invalid) {
			invalid.Path = archivePath
		}
		return models.Manifest{}, err
	}
	return result, nil
}

// findManifestEntry walks the entries once. A manifest at the archive root
// wins over nested ones; otherwise the first nested one is used.
func findManifestEntry(files []*zip.File) *zip.File {
	var nested *zip.File
	for _, file := range files {
		name := strings.ReplaceAll(file.Name, `\`, "/")
		if strings.HasSuffix(name, "/") || file.FileInfo().IsDir() {
			continue
		}
		if !strings.EqualFold(path.Base(name), manifestFileName) {
			continue
		}
		if !strings.Contains(strings.TrimPrefix(name, "/"), "/") {
			return file
		}
		if nested == nil {
			nested = file
		}
	}
	return nested
}

// Parse decodes manifest XML.
func Parse(reader io.Reader) (models.Manifest, error) {
	data, err := io.ReadAll(io.LimitReader(reader, maxManifestSize+1))
	if err != nil {
		return models.Manifest{}, &InvalidError{Reason: "cannot read", Err: err}
	}
	if len(data) > maxManifestSize {
		return models.Manifest{}, &InvalidError{Reason: "manifest too large"}
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(bytes.TrimPrefix(data, utf8BOM)); err != nil {
		return models.Manifest{}, &InvalidError{Reason: "malformed XML", Err: err}
	}

	root := doc.Root()
	if root == nil || root.Tag != rootElement {
		return models.Manifest{}, &InvalidError{Reason: "root element is not <manifest>"}
	}

	result := models.Manifest{
		SchemaVersion: strings.TrimSpace(root.SelectAttrValue("schema-ver", "")),
		GUID:          childText(root, "guid"),
		Name:          childText(root, "name"),
		Version:       childText(root, "version"),
		Author:        childText(root, "author"),
		Description:   childText(root, "description"),
		Website:       childText(root, "website"),
		Games:         gameNames(root),
	}

	if result.GUID == "" {
		return models.Manifest{}, &InvalidError{Reason: "missing <guid>"}
	}
	return result, nil
}

func childText(parent *etree.Element, tag string) string {
	child := parent.SelectElement(tag)
	if child == nil {
		return ""
	}
	return strings.TrimSpace(child.Text())
}

// gameNames accepts both <game> children and a <games><game/></games> group.
func gameNames(root *etree.Element) []string {
	elements := root.SelectElements("game")
	for _, group := range root.SelectElements("games") {
		elements = append(elements, group.SelectElements("game")...)
	}

	var games []string
	for _, element := range elements {
		if name := strings.TrimSpace(element.Text()); name != "" {
			games = append(games, name)
		}
	}
	return games
}
