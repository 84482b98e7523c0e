// Package imageurl builds URLs for scaled and cropped variants of repository
// images.
package imageurl

import (
	"fmt"
	"net/url"
	"strings"
)

// Builder creates image URLs relative to a binaries base URL.
type Builder struct {
	base string
}

// NewBuilder creates a builder. base is prepended to every image link, for
// example "/binaries" or "https://cdn.example.com/binaries".
func NewBuilder(base string) *Builder {
	return &Builder{base: strings.TrimSuffix(base, "/")}
}

// Image is a chain of operations on one image link.
type Image struct {
	base string
	link string
	ops  []string
}

// From starts a chain for link. An empty link produces an empty URL.
func (b *Builder) From(link string) *Image {
	return &Image{base: b.base, link: link}
}

// Crop crops the image to width x height.
func (i *Image) Crop(width, height int) *Image {
	i.ops = append(i.ops, fmt.Sprintf("crop=%dx%d", width, height))
	return i
}

// ScaleWidth scales the image to width, keeping the aspect ratio.
func (i *Image) ScaleWidth(width int) *Image {
	i.ops = append(i.ops, fmt.Sprintf("scaleWidth=%d", width))
	return i
}

// ScaleHeight scales the image to height, keeping the aspect ratio.
func (i *Image) ScaleHeight(height int) *Image {
	i.ops = append(i.ops, fmt.Sprintf("scaleHeight=%d", height))
	return i
}

// URL returns the image URL. Operations are encoded in call order.
func (i *Image) URL() string {
	if i.link == "" {
		return ""
	}
	link := i.link
	if !strings.HasPrefix(link, "/") {
		link = "/" + link
	}

	var b strings.Builder
	b.WriteString(i.base)
	b.WriteString((&url.URL{Path: link}).EscapedPath())
	if len(i.ops) > 0 {
		b.WriteString("?ops=")
		b.WriteString(url.QueryEscape(strings.Join(i.ops, ",")))
	}
	return b.String()
}

func (i *Image) String() string {
	return i.URL()
}
