package index

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bordeux/rpm-repo/internal/models"
	"github.com/klauspost/compress/gzip"
)

// builtinIndexer generates repodata natively from the manifest records. It
// emits only the primary metadata, which is enough for dnf to resolve and
// install; createrepo remains preferred when available.
type builtinIndexer struct{}

func (b *builtinIndexer) Index(_ context.Context, packagesDir string, packages []models.Package) error {
	primaryXML, err := primaryMetadata(packages)
	if err != nil {
		return &models.RepoError{Type: models.ErrIndexing, Err: err}
	}

	var compressed bytes.Buffer
	zw := gzip.NewWriter(&compressed)
	if _, err := zw.Write(primaryXML); err != nil {
		return &models.RepoError{Type: models.ErrIndexing, Err: err}
	}
	if err := zw.Close(); err != nil {
		return &models.RepoError{Type: models.ErrIndexing, Err: err}
	}

	primarySum := sha256Hex(compressed.Bytes())
	openSum := sha256Hex(primaryXML)

	repodataDir := filepath.Join(packagesDir, "repodata")
	if err := os.MkdirAll(repodataDir, 0755); err != nil {
		return &models.RepoError{Type: models.ErrFileOp, Err: err}
	}

	primaryName := fmt.Sprintf("%s-primary.xml.gz", primarySum)
	if err := os.WriteFile(filepath.Join(repodataDir, primaryName), compressed.Bytes(), 0644); err != nil {
		return &models.RepoError{Type: models.ErrFileOp, Err: err}
	}

	repomdXML, err := repomdMetadata(primarySum, openSum, primaryName, int64(compressed.Len()), int64(len(primaryXML)))
	if err != nil {
		return &models.RepoError{Type: models.ErrIndexing, Err: err}
	}
	if err := os.WriteFile(filepath.Join(repodataDir, "repomd.xml"), repomdXML, 0644); err != nil {
		return &models.RepoError{Type: models.ErrFileOp, Err: err}
	}

	return nil
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// XML structures for metadata

type metadata struct {
	XMLName       xml.Name `xml:"metadata"`
	Xmlns         string   `xml:"xmlns,attr"`
	XmlnsRpm      string   `xml:"xmlns:rpm,attr"`
	PackagesCount int      `xml:"packages,attr"`
	Packages      []xmlPkg `xml:"package"`
}

type xmlPkg struct {
	Type     string      `xml:"type,attr"`
	Name     string      `xml:"name"`
	Arch     string      `xml:"arch"`
	Version  xmlVersion  `xml:"version"`
	Checksum xmlChecksum `xml:"checksum"`
	Summary  string      `xml:"summary"`
	URL      string      `xml:"url,omitempty"`
	Time     xmlTime     `xml:"time"`
	Size     xmlSize     `xml:"size"`
	Location xmlLocation `xml:"location"`
	Format   xmlFormat   `xml:"format"`
}

type xmlVersion struct {
	Epoch string `xml:"epoch,attr"`
	Ver   string `xml:"ver,attr"`
	Rel   string `xml:"rel,attr"`
}

type xmlChecksum struct {
	Type  string `xml:"type,attr"`
	Pkgid string `xml:"pkgid,attr"`
	Value string `xml:",chardata"`
}

type xmlTime struct {
	File  int64 `xml:"file,attr"`
	Build int64 `xml:"build,attr"`
}

type xmlSize struct {
	Package   int64 `xml:"package,attr"`
	Installed int64 `xml:"installed,attr"`
	Archive   int64 `xml:"archive,attr"`
}

type xmlLocation struct {
	Href string `xml:"href,attr"`
}

type xmlFormat struct {
	License string `xml:"rpm:license,omitempty"`
	Vendor  string `xml:"rpm:vendor,omitempty"`
}

func primaryMetadata(packages []models.Package) ([]byte, error) {
	now := time.Now().Unix()

	var xmlPackages []xmlPkg
	for _, pkg := range packages {
		xmlPackages = append(xmlPackages, xmlPkg{
			Type: "rpm",
			Name: pkg.Name,
			Arch: pkg.Architecture,
			Version: xmlVersion{
				Epoch: "0",
				Ver:   pkg.Version,
				Rel:   "1",
			},
			Checksum: xmlChecksum{
				Type:  "sha256",
				Pkgid: "YES",
				Value: pkg.SHA256,
			},
			Summary: pkg.Summary,
			URL:     pkg.Homepage,
			Time:    xmlTime{File: now, Build: now},
			Size: xmlSize{
				Package:   pkg.Size,
				Installed: pkg.Size,
				Archive:   pkg.Size,
			},
			Location: xmlLocation{Href: pkg.Filename},
			Format: xmlFormat{
				License: pkg.License,
				Vendor:  pkg.Vendor,
			},
		})
	}

	meta := metadata{
		Xmlns:         "http://linux.duke.edu/metadata/common",
		XmlnsRpm:      "http://linux.duke.edu/metadata/rpm",
		PackagesCount: len(packages),
		Packages:      xmlPackages,
	}

	xmlBytes, err := xml.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), xmlBytes...), nil
}

type repomd struct {
	XMLName  xml.Name     `xml:"repomd"`
	Xmlns    string       `xml:"xmlns,attr"`
	XmlnsRpm string       `xml:"xmlns:rpm,attr"`
	Revision int64        `xml:"revision"`
	Data     []repomdData `xml:"data"`
}

type repomdData struct {
	Type         string         `xml:"type,attr"`
	Checksum     repomdChecksum `xml:"checksum"`
	OpenChecksum repomdChecksum `xml:"open-checksum"`
	Location     repomdLocation `xml:"location"`
	Timestamp    int64          `xml:"timestamp"`
	Size         int64          `xml:"size"`
	OpenSize     int64          `xml:"open-size"`
}

type repomdChecksum struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type repomdLocation struct {
	Href string `xml:"href,attr"`
}

func repomdMetadata(primarySum, openSum, primaryName string, size, openSize int64) ([]byte, error) {
	now := time.Now().Unix()

	doc := repomd{
		Xmlns:    "http://linux.duke.edu/metadata/repo",
		XmlnsRpm: "http://linux.duke.edu/metadata/rpm",
		Revision: now,
		Data: []repomdData{
			{
				Type:         "primary",
				Checksum:     repomdChecksum{Type: "sha256", Value: primarySum},
				OpenChecksum: repomdChecksum{Type: "sha256", Value: openSum},
				Location:     repomdLocation{Href: "repodata/" + primaryName},
				Timestamp:    now,
				Size:         size,
				OpenSize:     openSize,
			},
		},
	}

	xmlBytes, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), xmlBytes...), nil
}
