/*
 *     Copyright 2024 The AI Verify Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package capability

import (
	"bufio"
	"encoding/binary"
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// PickleInfo is what a pickle stream references without executing it.
type PickleInfo struct {
	// Protocol is the pickle protocol, zero for text protocols.
	Protocol int

	// Globals are the distinct "module.name" references, sorted.
	Globals []string

	// Compressed reports whether the stream was zlib compressed.
	Compressed bool
}

// HasModulePrefix reports whether any global lives under one of the module prefixes.
func (p *PickleInfo) HasModulePrefix(prefixes ...string) bool {
	for _, g := range p.Globals {
		for _, prefix := range prefixes {
			if strings.HasPrefix(g, prefix) {
				return true
			}
		}
	}

	return false
}

// HasGlobal reports whether the stream references the exact global.
func (p *PickleInfo) HasGlobal(name string) bool {
	i := sort.SearchStrings(p.Globals, name)
	return i < len(p.Globals) && p.Globals[i] == name
}

var errNotPickle = errors.New("not a pickle stream")

// Pickle opcodes with arguments, see Lib/pickletools.py.
const (
	opMark           = '('
	opStop           = '.'
	opFloat          = 'F'
	opInt            = 'I'
	opBinInt         = 'J'
	opBinInt1        = 'K'
	opLong           = 'L'
	opBinInt2        = 'M'
	opPersID         = 'P'
	opString         = 'S'
	opBinString      = 'T'
	opShortBinString = 'U'
	opUnicode        = 'V'
	opBinUnicode     = 'X'
	opGlobal         = 'c'
	opGet            = 'g'
	opBinGet         = 'h'
	opInst           = 'i'
	opLongBinGet     = 'j'
	opPut            = 'p'
	opBinPut         = 'q'
	opLongBinPut     = 'r'
	opBinFloat       = 'G'
	opBinBytes       = 'B'
	opShortBinBytes  = 'C'

	opProto           = 0x80
	opExt1            = 0x82
	opExt2            = 0x83
	opExt4            = 0x84
	opLong1           = 0x8a
	opLong4           = 0x8b
	opShortBinUnicode = 0x8c
	opBinUnicode8     = 0x8d
	opBinBytes8       = 0x8e
	opStackGlobal     = 0x93
	opMemoize         = 0x94
	opFrame           = 0x95
	opByteArray8      = 0x96
)

// Opcodes without arguments.
var pickleNoArg = map[byte]struct{}{
	opMark: {}, '0': {}, '1': {}, '2': {}, 'N': {}, 'Q': {}, 'R': {}, 'a': {}, 'b': {}, 'd': {}, '}': {},
	'e': {}, 'l': {}, ']': {}, 'o': {}, 's': {}, 't': {}, ')': {}, 'u': {},
	0x81: {}, 0x85: {}, 0x86: {}, 0x87: {}, 0x88: {}, 0x89: {}, 0x8f: {}, 0x90: {}, 0x91: {}, 0x92: {},
	0x97: {}, 0x98: {},
}

// pickleScanner walks opcodes and tracks strings closely enough to resolve
// STACK_GLOBAL operands, including memoized ones.
type pickleScanner struct {
	r        *bufio.Reader
	info     *PickleInfo
	globals  map[string]struct{}
	strs     []string
	memo     map[uint64]string
	memoNext uint64
	last     string
	lastStr  bool
}

// ScanPickle lists the globals referenced by a pickle stream up to its STOP opcode.
// On error the globals seen so far are still returned, since some writers interleave
// raw buffers with opcodes.
func ScanPickle(r io.Reader) (*PickleInfo, error) {
	s := &pickleScanner{
		r:       bufio.NewReader(r),
		info:    &PickleInfo{},
		globals: make(map[string]struct{}),
		memo:    make(map[uint64]string),
	}

	err := s.scan()
	for g := range s.globals {
		s.info.Globals = append(s.info.Globals, g)
	}
	sort.Strings(s.info.Globals)

	return s.info, err
}

func (s *pickleScanner) scan() error {
	for first := true; ; first = false {
		op, err := s.r.ReadByte()
		if err != nil {
			return errors.Wrap(errNotPickle, "unexpected end of stream")
		}

		// Text protocol streams commonly start with MARK, GLOBAL or PROTO.
		if first && op != opProto && op != opMark && op != opGlobal && op != '}' && op != ']' && op != ')' {
			return errNotPickle
		}

		pushedStr := false
		switch op {
		case opStop:
			return nil
		case opProto:
			b, err := s.r.ReadByte()
			if err != nil || b > 5 {
				return errNotPickle
			}
			s.info.Protocol = int(b)
		case opFrame:
			if _, err := s.skip(8); err != nil {
				return err
			}
		case opGlobal, opInst:
			module, err := s.line()
			if err != nil {
				return err
			}
			name, err := s.line()
			if err != nil {
				return err
			}
			s.addGlobal(module, name)
		case opStackGlobal:
			if len(s.strs) >= 2 {
				s.addGlobal(s.strs[len(s.strs)-2], s.strs[len(s.strs)-1])
			}
		case opShortBinUnicode, opShortBinString, opShortBinBytes:
			n, err := s.r.ReadByte()
			if err != nil {
				return errNotPickle
			}
			str, err := s.skip(uint64(n))
			if err != nil {
				return err
			}
			if op == opShortBinUnicode || op == opShortBinString {
				s.pushStr(str)
				pushedStr = true
			}
		case opBinUnicode, opBinString, opBinBytes:
			n, err := s.uint(4)
			if err != nil {
				return err
			}
			str, err := s.skip(n)
			if err != nil {
				return err
			}
			if op != opBinBytes {
				s.pushStr(str)
				pushedStr = true
			}
		case opBinUnicode8, opBinBytes8, opByteArray8:
			n, err := s.uint(8)
			if err != nil {
				return err
			}
			str, err := s.skip(n)
			if err != nil {
				return err
			}
			if op == opBinUnicode8 {
				s.pushStr(str)
				pushedStr = true
			}
		case opUnicode, opString:
			str, err := s.line()
			if err != nil {
				return err
			}
			s.pushStr(strings.Trim(str, `'"`))
			pushedStr = true
		case opFloat, opInt, opLong, opPersID:
			if _, err := s.line(); err != nil {
				return err
			}
		case opPut:
			if _, err := s.line(); err != nil {
				return err
			}
		case opGet:
			if _, err := s.line(); err != nil {
				return err
			}
		case opBinPut:
			idx, err := s.uint(1)
			if err != nil {
				return err
			}
			s.put(idx)
		case opLongBinPut:
			idx, err := s.uint(4)
			if err != nil {
				return err
			}
			s.put(idx)
		case opMemoize:
			s.put(s.memoNext)
		case opBinGet, opLongBinGet:
			size := 1
			if op == opLongBinGet {
				size = 4
			}
			idx, err := s.uint(size)
			if err != nil {
				return err
			}
			if str, ok := s.memo[idx]; ok {
				s.pushStr(str)
				pushedStr = true
			}
		case opBinInt1, opExt1:
			if _, err := s.skip(1); err != nil {
				return err
			}
		case opBinInt2, opExt2:
			if _, err := s.skip(2); err != nil {
				return err
			}
		case opBinInt, opExt4:
			if _, err := s.skip(4); err != nil {
				return err
			}
		case opBinFloat:
			if _, err := s.skip(8); err != nil {
				return err
			}
		case opLong1:
			n, err := s.r.ReadByte()
			if err != nil {
				return errNotPickle
			}
			if _, err := s.skip(uint64(n)); err != nil {
				return err
			}
		case opLong4:
			n, err := s.uint(4)
			if err != nil {
				return err
			}
			if _, err := s.skip(n); err != nil {
				return err
			}
		default:
			if _, ok := pickleNoArg[op]; !ok {
				return errors.Wrapf(errNotPickle, "unknown opcode 0x%02x", op)
			}
		}

		// Memo entries only resolve strings pushed by the previous opcode.
		s.lastStr = pushedStr
	}
}

func (s *pickleScanner) pushStr(str string) {
	s.strs = append(s.strs, str)
	if len(s.strs) > 2 {
		s.strs = s.strs[len(s.strs)-2:]
	}
	s.last = str
}

func (s *pickleScanner) put(idx uint64) {
	if s.lastStr {
		s.memo[idx] = s.last
	}
	s.memoNext = idx + 1
}

func (s *pickleScanner) addGlobal(module, name string) {
	if module == "" || name == "" {
		return
	}

	s.globals[module+"."+name] = struct{}{}
}

func (s *pickleScanner) line() (string, error) {
	line, err := s.r.ReadString('\n')
	if err != nil {
		return "", errors.Wrap(errNotPickle, "unterminated line argument")
	}

	return strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r"), nil
}

func (s *pickleScanner) uint(size int) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(s.r, buf[:size]); err != nil {
		return 0, errors.Wrap(errNotPickle, "truncated argument")
	}

	return binary.LittleEndian.Uint64(buf[:]), nil
}

// skip consumes n bytes and returns them as a string when short enough to be a name.
func (s *pickleScanner) skip(n uint64) (string, error) {
	const maxName = 1024
	if n <= maxName {
		buf := make([]byte, n)
		if _, err := io.ReadFull(s.r, buf); err != nil {
			return "", errors.Wrap(errNotPickle, "truncated argument")
		}
		return string(buf), nil
	}

	if _, err := io.CopyN(io.Discard, s.r, int64(n)); err != nil {
		return "", errors.Wrap(errNotPickle, "truncated argument")
	}

	return "", nil
}
