package frame

// CRC16 is the CCITT checksum used by the link, seeded with zero.
func CRC16(b []byte) uint16 {
	var acc uint16
	for _, c := range b {
		acc = crc16Add(c, acc)
	}
	return acc
}

func crc16Add(b byte, acc uint16) uint16 {
	acc ^= uint16(b)
	acc = (acc >> 8) | (acc << 8)
	acc ^= (acc & 0xff00) << 4
	acc ^= (acc >> 8) >> 4
	acc ^= (acc & 0xff00) >> 5
	return acc
}
