package zk

import (
	"encoding/binary"
	"errors"
	"io"
	"reflect"
)

var (
	// ErrUnhandledFieldType is returned when a packet struct has a field the jute encoding does not support.
	ErrUnhandledFieldType = errors.New("zk: unhandled field type")
	// ErrPtrExpected is returned when encoding or decoding is not given a non-nil pointer.
	ErrPtrExpected = errors.New("zk: encode/decode expect a non-nil pointer to struct")
	// ErrShortBuffer is returned when the buffer is too small for the packet.
	ErrShortBuffer = errors.New("zk: buffer too small")
)

type codecBuffer struct {
	buf [bufferSize]byte
}

// encodeObject writes the length prefixed packet of obj to w.
func encodeObject[T any](obj *T, codec *codecBuffer, w io.Writer) (int, error) {
	buf := codec.buf[:]

	n, err := encodePacket(buf[4:], obj)
	if err != nil {
		return 0, err
	}
	binary.BigEndian.PutUint32(buf[:4], uint32(n))

	return w.Write(buf[:n+4])
}

// decodeObject reads a length prefixed packet from r into obj.
func decodeObject[T any](obj *T, codec *codecBuffer, r io.Reader) error {
	buf := codec.buf[:]

	if _, err := io.ReadFull(r, buf[:4]); err != nil {
		return err
	}

	blen := int(binary.BigEndian.Uint32(buf[:4]))
	if len(buf) < blen {
		return ErrShortBuffer
	}

	if _, err := io.ReadFull(r, buf[:blen]); err != nil {
		return err
	}

	_, err := decodePacket(buf[:blen], obj)
	return err
}

func encodePacket(buf []byte, st any) (int, error) {
	v := reflect.ValueOf(st)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return 0, ErrPtrExpected
	}
	return encodeValue(buf, v.Elem())
}

func encodeValue(buf []byte, v reflect.Value) (int, error) {
	switch v.Kind() {
	case reflect.Struct:
		n := 0
		for i := 0; i < v.NumField(); i++ {
			n2, err := encodeValue(buf[n:], v.Field(i))
			if err != nil {
				return n, err
			}
			n += n2
		}
		return n, nil

	case reflect.Bool:
		if len(buf) < 1 {
			return 0, ErrShortBuffer
		}
		buf[0] = 0
		if v.Bool() {
			buf[0] = 1
		}
		return 1, nil

	case reflect.Int32:
		if len(buf) < 4 {
			return 0, ErrShortBuffer
		}
		binary.BigEndian.PutUint32(buf, uint32(v.Int()))
		return 4, nil

	case reflect.Int64:
		if len(buf) < 8 {
			return 0, ErrShortBuffer
		}
		binary.BigEndian.PutUint64(buf, uint64(v.Int()))
		return 8, nil

	case reflect.String:
		s := v.String()
		if len(buf) < 4+len(s) {
			return 0, ErrShortBuffer
		}
		binary.BigEndian.PutUint32(buf, uint32(len(s)))
		copy(buf[4:], s)
		return 4 + len(s), nil

	case reflect.Slice:
		if len(buf) < 4 {
			return 0, ErrShortBuffer
		}
		if v.Type().Elem().Kind() == reflect.Uint8 {
			if v.IsNil() {
				// a nil buffer is encoded with length -1
				binary.BigEndian.PutUint32(buf, uint32(0xffffffff))
				return 4, nil
			}
			b := v.Bytes()
			if len(buf) < 4+len(b) {
				return 0, ErrShortBuffer
			}
			binary.BigEndian.PutUint32(buf, uint32(len(b)))
			copy(buf[4:], b)
			return 4 + len(b), nil
		}

		// the server iterates lists without a null check, a nil list is sent empty
		binary.BigEndian.PutUint32(buf, uint32(v.Len()))
		n := 4
		for i := 0; i < v.Len(); i++ {
			n2, err := encodeValue(buf[n:], v.Index(i))
			if err != nil {
				return n, err
			}
			n += n2
		}
		return n, nil

	default:
		return 0, ErrUnhandledFieldType
	}
}

func decodePacket(buf []byte, st any) (int, error) {
	v := reflect.ValueOf(st)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return 0, ErrPtrExpected
	}
	return decodeValue(buf, v.Elem())
}

func decodeValue(buf []byte, v reflect.Value) (int, error) {
	switch v.Kind() {
	case reflect.Struct:
		n := 0
		for i := 0; i < v.NumField(); i++ {
			n2, err := decodeValue(buf[n:], v.Field(i))
			if err != nil {
				return n, err
			}
			n += n2
		}
		return n, nil

	case reflect.Bool:
		if len(buf) < 1 {
			return 0, ErrShortBuffer
		}
		v.SetBool(buf[0] != 0)
		return 1, nil

	case reflect.Int32:
		if len(buf) < 4 {
			return 0, ErrShortBuffer
		}
		v.SetInt(int64(int32(binary.BigEndian.Uint32(buf))))
		return 4, nil

	case reflect.Int64:
		if len(buf) < 8 {
			return 0, ErrShortBuffer
		}
		v.SetInt(int64(binary.BigEndian.Uint64(buf)))
		return 8, nil

	case reflect.String:
		if len(buf) < 4 {
			return 0, ErrShortBuffer
		}
		ln := int(int32(binary.BigEndian.Uint32(buf)))
		if ln < 0 {
			v.SetString("")
			return 4, nil
		}
		if len(buf) < 4+ln {
			return 0, ErrShortBuffer
		}
		v.SetString(string(buf[4 : 4+ln]))
		return 4 + ln, nil

	case reflect.Slice:
		if len(buf) < 4 {
			return 0, ErrShortBuffer
		}
		count := int(int32(binary.BigEndian.Uint32(buf)))
		if count < 0 {
			v.Set(reflect.Zero(v.Type()))
			return 4, nil
		}

		if v.Type().Elem().Kind() == reflect.Uint8 {
			if len(buf) < 4+count {
				return 0, ErrShortBuffer
			}
			// must copy, the read buffer is reused for the next packet
			b := make([]byte, count)
			copy(b, buf[4:4+count])
			v.SetBytes(b)
			return 4 + count, nil
		}

		slice := reflect.MakeSlice(v.Type(), count, count)
		n := 4
		for i := 0; i < count; i++ {
			n2, err := decodeValue(buf[n:], slice.Index(i))
			if err != nil {
				return n, err
			}
			n += n2
		}
		v.Set(slice)
		return n, nil

	default:
		return 0, ErrUnhandledFieldType
	}
}
