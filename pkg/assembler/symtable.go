// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package assembler

import (
	"encoding/gob"
	"io"
	"path/filepath"
	"strings"
)

func NewSymTable(source string) *SymTable {
	return &SymTable{
		Source:  source,
		Symbols: make(map[uint16]int64),
		Labels:  make(map[uint16]string),
	}
}

// Path of the symbol table that accompanies the binary at path
func SymTablePath(path string) string {
	return filepath.Join(
		filepath.Dir(path),
		strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))+SYMTABLE_EXT,
	)
}

func (symtable *SymTable) Encode(w io.Writer) error {
	return gob.NewEncoder(w).Encode(symtable)
}

func DecodeSymTable(r io.Reader) (*SymTable, error) {
	var symtable SymTable

	if err := gob.NewDecoder(r).Decode(&symtable); err != nil {
		return nil, err
	}

	return &symtable, nil
}
