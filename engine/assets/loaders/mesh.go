package loaders

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spaghettifunk/prism/engine/core"
	"github.com/spaghettifunk/prism/engine/renderer/metadata"
)

// Number of control points in every curve patch.
const CURVE_PATCH_SIZE = 4

/**
 * @brief Loads whitespace separated mesh and curve files.
 *
 * A mesh file is a vertex count, that many rows of floats, an index count and
 * that many indices. The row width is not stored in the file, so Layouts lists
 * the widths the loader accepts; the first one that accounts for every token
 * wins. A curve file is a patch count followed by four rows of CurveColumns
 * floats per patch.
 */
type MeshLoader struct {
	Layouts      []int
	CurveColumns int
}

func (ml *MeshLoader) LoadMesh(path, name string) (*metadata.MeshData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrAssetRead, err)
	}
	defer f.Close()
	return ParseMesh(f, name, ml.Layouts...)
}

func (ml *MeshLoader) LoadCurve(path, name string) (*metadata.CurveData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrAssetRead, err)
	}
	defer f.Close()
	return ParseCurve(f, name, ml.CurveColumns)
}

func tokens(r io.Reader) ([]string, error) {
	var out []string
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		out = append(out, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrAssetRead, err)
	}
	return out, nil
}

func parseCount(name, token string) (int, error) {
	n, err := strconv.Atoi(token)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s: bad count %q", core.ErrMalformedAsset, name, token)
	}
	return n, nil
}

func parseRows(name string, toks []string, count, columns int) ([][]float32, error) {
	rows := make([][]float32, count)
	for i := range rows {
		row := make([]float32, columns)
		for c := range row {
			tok := toks[i*columns+c]
			v, err := strconv.ParseFloat(tok, 32)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: row %d: bad value %q", core.ErrMalformedAsset, name, i, tok)
			}
			row[c] = float32(v)
		}
		rows[i] = row
	}
	return rows, nil
}

// ParseMesh reads a mesh whose rows have one of the given widths.
func ParseMesh(r io.Reader, name string, layouts ...int) (*metadata.MeshData, error) {
	toks, err := tokens(r)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", core.ErrMalformedAsset, name)
	}
	vertices, err := parseCount(name, toks[0])
	if err != nil {
		return nil, err
	}
	for _, columns := range layouts {
		if columns <= 0 || vertices > (len(toks)-1)/columns {
			continue
		}
		at := 1 + vertices*columns
		if at >= len(toks) {
			continue
		}
		indices, err := strconv.Atoi(toks[at])
		if err != nil || indices < 0 || at+1+indices != len(toks) {
			continue
		}
		rows, err := parseRows(name, toks[1:at], vertices, columns)
		if err != nil {
			return nil, err
		}
		mesh := &metadata.MeshData{Name: name, Columns: columns, Rows: rows, Indices: make([]uint32, indices)}
		for i, tok := range toks[at+1:] {
			v, err := strconv.ParseUint(tok, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: bad index %q", core.ErrMalformedAsset, name, tok)
			}
			if int(v) >= vertices {
				return nil, fmt.Errorf("%w: %s: index %d past %d vertices", core.ErrMalformedAsset, name, v, vertices)
			}
			mesh.Indices[i] = uint32(v)
		}
		return mesh, nil
	}
	return nil, fmt.Errorf("%w: %s: %d tokens match none of the row widths %v", core.ErrMalformedAsset, name, len(toks), layouts)
}

// ParseCurve reads a patch count followed by the control points of every patch.
func ParseCurve(r io.Reader, name string, columns int) (*metadata.CurveData, error) {
	toks, err := tokens(r)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", core.ErrMalformedAsset, name)
	}
	patches, err := parseCount(name, toks[0])
	if err != nil {
		return nil, err
	}
	if columns <= 0 || patches > (len(toks)-1)/(CURVE_PATCH_SIZE*columns) {
		return nil, fmt.Errorf("%w: %s: %d patches of %d columns do not fit in %d values", core.ErrMalformedAsset, name, patches, columns, len(toks)-1)
	}
	points := patches * CURVE_PATCH_SIZE
	if want := 1 + points*columns; len(toks) < want {
		return nil, fmt.Errorf("%w: %s: %d patches need %d values, found %d", core.ErrMalformedAsset, name, patches, want-1, len(toks)-1)
	}
	rows, err := parseRows(name, toks[1:], points, columns)
	if err != nil {
		return nil, err
	}
	return &metadata.CurveData{Name: name, PatchCount: patches, Rows: rows}, nil
}
