// Package crc implements ISO/IEC 14443-3 type A frame checksum (CRC_A).
package crc

const crcAInit uint16 = 0x6363

func CRC_A_next(crc uint16, data byte) uint16 {
	b := data ^ byte(crc)
	b ^= b << 4
	return (crc >> 8) ^ uint16(b)<<8 ^ uint16(b)<<3 ^ uint16(b)>>4
}

// CRC_A returns checksum bytes in transmission order, low byte first.
func CRC_A(data []byte) [2]byte {
	crc := crcAInit
	for _, b := range data {
		crc = CRC_A_next(crc, b)
	}
	return [2]byte{byte(crc), byte(crc >> 8)}
}

// AppendCRC_A appends checksum to frame.
func AppendCRC_A(frame []byte) []byte {
	c := CRC_A(frame)
	return append(frame, c[0], c[1])
}

// CheckCRC_A validates frame with trailing checksum.
func CheckCRC_A(frame []byte) bool {
	if len(frame) < 3 {
		return false
	}
	c := CRC_A(frame[:len(frame)-2])
	return c[0] == frame[len(frame)-2] && c[1] == frame[len(frame)-1]
}
