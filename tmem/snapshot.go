package tmem

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	bankRecordSize = 1 + 1 + 4 + 4
	unitRecordSize = 2*bankRecordSize + 1

	// SnapshotSize is the length in bytes of a serialized table.
	SnapshotSize = NumUnits * unitRecordSize
)

// MarshalBinary encodes the table as a fixed-size little-endian block.
func (t *Tmem) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, SnapshotSize)

	for _, u := range t.units {
		buf = appendBank(buf, u.Even)
		buf = appendBank(buf, u.Odd)
		buf = append(buf, byte(u.Classification))
	}

	return buf, nil
}

func appendBank(buf []byte, b Bank) []byte {
	buf = append(buf, b.Width, b.Height)
	buf = binary.LittleEndian.AppendUint32(buf, b.Base)
	buf = binary.LittleEndian.AppendUint32(buf, b.Size)

	return buf
}

// UnmarshalBinary replaces the whole table with a block produced by
// MarshalBinary. Nothing is recomputed. The table is left untouched if the
// block is malformed.
func (t *Tmem) UnmarshalBinary(data []byte) error {
	if len(data) != SnapshotSize {
		return fmt.Errorf("tmem: snapshot is %d bytes, want %d",
			len(data), SnapshotSize)
	}

	var units [NumUnits]UnitState
	for i := range units {
		rec := data[i*unitRecordSize : (i+1)*unitRecordSize]

		c := Classification(rec[2*bankRecordSize])
		if c > Cached {
			return fmt.Errorf("tmem: unit %d has bad classification %d",
				i, uint8(c))
		}

		even := decodeBank(rec[:bankRecordSize])
		odd := decodeBank(rec[bankRecordSize : 2*bankRecordSize])

		if err := checkGeometry(i, "even", even); err != nil {
			return err
		}

		if err := checkGeometry(i, "odd", odd); err != nil {
			return err
		}

		units[i] = UnitState{Even: even, Odd: odd, Classification: c}
	}

	for i := range units {
		t.setClassification(i, units[i].Classification, CauseRestore)
		t.units[i] = units[i]
	}

	return nil
}

func checkGeometry(unit int, bank string, b Bank) error {
	if b.Width > maxCacheCode || b.Height > maxCacheCode {
		return fmt.Errorf("tmem: unit %d %s bank has bad geometry %dx%d",
			unit, bank, b.Width, b.Height)
	}

	return nil
}

func decodeBank(rec []byte) Bank {
	return Bank{
		Width:  rec[0],
		Height: rec[1],
		Base:   binary.LittleEndian.Uint32(rec[2:6]),
		Size:   binary.LittleEndian.Uint32(rec[6:10]),
	}
}

// Save writes the snapshot block to w.
func (t *Tmem) Save(w io.Writer) error {
	data, err := t.MarshalBinary()
	if err != nil {
		return err
	}

	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("tmem: writing snapshot: %w", err)
	}

	return nil
}

// Load reads a snapshot block from r and restores it.
func (t *Tmem) Load(r io.Reader) error {
	data := make([]byte, SnapshotSize)

	_, err := io.ReadFull(r, data)
	if err != nil {
		return fmt.Errorf("tmem: reading snapshot: %w", err)
	}

	return t.UnmarshalBinary(data)
}
