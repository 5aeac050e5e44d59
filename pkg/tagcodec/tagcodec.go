// Jukebox Core
// Copyright (c) 2026 Jukebox Core Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Jukebox Core.
//
// Jukebox Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Jukebox Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Jukebox Core.  If not, see <http://www.gnu.org/licenses/>.

// Package tagcodec reads and writes a UTF-8 payload across the fixed
// MIFARE Classic data-block schedule used by every tag this system
// writes: a MessagePack-framed string, streamed across nine 16-byte
// blocks with a single shared key.
package tagcodec

import (
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
)

// BlockSize is the size in bytes of a single MIFARE Classic data block.
const BlockSize = 16

// DataBlocks is the fixed schedule of block indices used to store the
// tag payload. Sector trailers (11, 15, ...) are skipped.
var DataBlocks = [9]uint8{8, 9, 10, 12, 13, 14, 16, 17, 18}

// KeyA is the MIFARE Key A used to authenticate every data block.
// Every tag this system writes uses the factory-default key; no
// card-specific key material is ever used.
var KeyA = [6]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

// ErrDecode indicates a block schedule was read successfully but the
// decoded bytes did not contain a valid MessagePack string.
var ErrDecode = errors.New("tagcodec: payload is not a valid msgpack string")

// Transport is the hardware collaborator the codec needs from a PICC
// driver. It is intentionally narrow: authenticate-then-read/write a
// single 16-byte block. The SPI/GPIO MFRC522 driver that implements
// this is out of scope for this core.
type Transport interface {
	// Authenticate prepares block for access using keyA under MIFARE
	// Key A authentication.
	Authenticate(block uint8, keyA [6]byte) error
	// ReadBlock returns the 16 data bytes of block (CRC bytes, if any,
	// are the transport's concern, not the codec's).
	ReadBlock(block uint8) ([BlockSize]byte, error)
	// WriteBlock writes exactly BlockSize bytes to block.
	WriteBlock(block uint8, data [BlockSize]byte) error
}

// Reader streams the data-block schedule of a single tag as an
// io.Reader, authenticating each block lazily as it is consumed.
type Reader struct {
	transport   Transport
	blockIdx    int
	posInBlock  int
	currentData [BlockSize]byte
	haveBlock   bool
	err         error
}

// NewReader returns a Reader over transport, starting at the first
// scheduled block.
func NewReader(transport Transport) *Reader {
	return &Reader{transport: transport}
}

// Read implements io.Reader, straddling block boundaries as needed.
// It returns io.EOF once the schedule is exhausted.
func (r *Reader) Read(buf []byte) (int, error) {
	if r.blockIdx >= len(DataBlocks) {
		return 0, io.EOF
	}
	if !r.haveBlock {
		block := DataBlocks[r.blockIdx]
		if err := r.transport.Authenticate(block, KeyA); err != nil {
			r.err = fmt.Errorf("tagcodec: authenticate block %d: %w", block, err)
			return 0, r.err
		}
		data, err := r.transport.ReadBlock(block)
		if err != nil {
			r.err = fmt.Errorf("tagcodec: read block %d: %w", block, err)
			return 0, r.err
		}
		r.currentData = data
		r.posInBlock = 0
		r.haveBlock = true
	}

	n := copy(buf, r.currentData[r.posInBlock:])
	r.posInBlock += n
	if r.posInBlock == BlockSize {
		r.haveBlock = false
		r.blockIdx++
	}
	return n, nil
}

// ReadString authenticates and reads blocks in schedule order and
// decodes a MessagePack string from the resulting byte stream.
// Authenticate/read failures are returned as transport errors; any
// other decoding failure wraps ErrDecode.
func ReadString(transport Transport) (string, error) {
	reader := NewReader(transport)
	decoder := msgpack.NewDecoder(reader)
	s, err := decoder.DecodeString()
	if err != nil {
		if reader.err != nil {
			return "", reader.err
		}
		return "", fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return s, nil
}

// Writer streams bytes into the data-block schedule of a single tag,
// buffering a partial block until it is filled or Flush is called.
type Writer struct {
	transport  Transport
	blockIdx   int
	buf        [BlockSize]byte
	posInBuf   int
}

// NewWriter returns a Writer over transport, starting at the first
// scheduled block.
func NewWriter(transport Transport) *Writer {
	return &Writer{transport: transport}
}

// Write implements io.Writer, writing full blocks as they fill and
// buffering the remainder.
func (w *Writer) Write(buf []byte) (int, error) {
	total := len(buf)
	for len(buf) > 0 {
		n := copy(w.buf[w.posInBuf:], buf)
		w.posInBuf += n
		buf = buf[n:]
		if w.posInBuf == BlockSize {
			if err := w.flushBlock(); err != nil {
				return total - len(buf), err
			}
		}
	}
	return total, nil
}

// Flush writes any buffered partial block, zero-padding it.
func (w *Writer) Flush() error {
	if w.posInBuf == 0 {
		return nil
	}
	for i := w.posInBuf; i < BlockSize; i++ {
		w.buf[i] = 0
	}
	w.posInBuf = BlockSize
	return w.flushBlock()
}

func (w *Writer) flushBlock() error {
	if w.blockIdx >= len(DataBlocks) {
		return fmt.Errorf("tagcodec: payload exceeds %d-block schedule", len(DataBlocks))
	}
	block := DataBlocks[w.blockIdx]
	if err := w.transport.Authenticate(block, KeyA); err != nil {
		return fmt.Errorf("tagcodec: authenticate block %d: %w", block, err)
	}
	if err := w.transport.WriteBlock(block, w.buf); err != nil {
		return fmt.Errorf("tagcodec: write block %d: %w", block, err)
	}
	w.blockIdx++
	w.posInBuf = 0
	w.buf = [BlockSize]byte{}
	return nil
}

// WriteString encodes s as a MessagePack string and streams it across
// the data-block schedule, flushing any trailing partial block.
func WriteString(transport Transport, s string) error {
	writer := NewWriter(transport)
	encoder := msgpack.NewEncoder(writer)
	if err := encoder.EncodeString(s); err != nil {
		return fmt.Errorf("tagcodec: encode string: %w", err)
	}
	return writer.Flush()
}
