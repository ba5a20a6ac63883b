package protocol

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// MaxStringLength bounds strings read off the wire.
const MaxStringLength = 32767 * 4

func ReadVarInt(r io.Reader) (int32, int, error) {
	var result uint32
	var numRead int
	buf := make([]byte, 1)

	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			return 0, numRead, err
		}
		numRead++

		result |= uint32(buf[0]&0x7F) << (7 * (numRead - 1))

		if buf[0]&0x80 == 0 {
			break
		}

		if numRead >= 5 {
			return 0, numRead, fmt.Errorf("VarInt too long")
		}
	}

	return int32(result), numRead, nil
}

func WriteVarInt(w io.Writer, value int32) (int, error) {
	var buf [5]byte
	n := PutVarInt(buf[:], value)
	return w.Write(buf[:n])
}

func PutVarInt(buf []byte, value int32) int {
	val := uint32(value)
	n := 0
	for {
		b := byte(val & 0x7F)
		val >>= 7
		if val != 0 {
			b |= 0x80
		}
		buf[n] = b
		n++
		if val == 0 {
			break
		}
	}
	return n
}

func VarIntSize(value int32) int {
	val := uint32(value)
	size := 0
	for {
		size++
		val >>= 7
		if val == 0 {
			break
		}
	}
	return size
}

func ReadVarLong(r io.Reader) (int64, int, error) {
	var result uint64
	var numRead int
	buf := make([]byte, 1)

	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			return 0, numRead, err
		}
		numRead++

		result |= uint64(buf[0]&0x7F) << (7 * (numRead - 1))

		if buf[0]&0x80 == 0 {
			break
		}

		if numRead >= 10 {
			return 0, numRead, fmt.Errorf("VarLong too long")
		}
	}

	return int64(result), numRead, nil
}

func WriteVarLong(w io.Writer, value int64) (int, error) {
	var buf [10]byte
	val := uint64(value)
	n := 0
	for {
		b := byte(val & 0x7F)
		val >>= 7
		if val != 0 {
			b |= 0x80
		}
		buf[n] = b
		n++
		if val == 0 {
			break
		}
	}
	return w.Write(buf[:n])
}

func ReadString(r io.Reader) (string, error) {
	length, _, err := ReadVarInt(r)
	if err != nil {
		return "", fmt.Errorf("read string length: %w", err)
	}
	if length < 0 || length > MaxStringLength {
		return "", fmt.Errorf("string length out of range: %d", length)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", fmt.Errorf("read string data: %w", err)
	}
	return string(buf), nil
}

func WriteString(w io.Writer, s string) (int, error) {
	n1, err := WriteVarInt(w, int32(len(s)))
	if err != nil {
		return n1, err
	}
	n2, err := w.Write([]byte(s))
	return n1 + n2, err
}

func ReadU8(r io.Reader) (uint8, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func ReadF32(r io.Reader) (float32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.BigEndian.Uint32(buf[:])), nil
}

func WriteF32(w io.Writer, v float32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], math.Float32bits(v))
	_, err := w.Write(buf[:])
	return err
}

func ReadBool(r io.Reader) (bool, error) {
	b, err := ReadU8(r)
	return b != 0, err
}

func WriteBool(w io.Writer, b bool) error {
	var v byte
	if b {
		v = 1
	}
	_, err := w.Write([]byte{v})
	return err
}
