// Package all registers every bundled format plugin with the default
// codec registry. Import it for its side effects.
package all

import (
	_ "github.com/cocosip/go-image-big64/formats/bmp"
	_ "github.com/cocosip/go-image-big64/formats/dicom"
	_ "github.com/cocosip/go-image-big64/formats/gif"
	_ "github.com/cocosip/go-image-big64/formats/ico"
	_ "github.com/cocosip/go-image-big64/formats/jpeg"
	_ "github.com/cocosip/go-image-big64/formats/null"
	_ "github.com/cocosip/go-image-big64/formats/png"
	_ "github.com/cocosip/go-image-big64/formats/pnm"
	_ "github.com/cocosip/go-image-big64/formats/qoi"
	_ "github.com/cocosip/go-image-big64/formats/targa"
	_ "github.com/cocosip/go-image-big64/formats/tiff"
	_ "github.com/cocosip/go-image-big64/formats/webp"
	_ "github.com/cocosip/go-image-big64/formats/zfile"
)
