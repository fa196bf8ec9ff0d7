package bptree

import (
	"encoding/binary"
	"fmt"
)

// metadataEncodedSize is the number of bytes the metadata block actually
// uses: four little-endian platform words (fanout, block size, identifier
// size, key size) followed by two NodeIdent fields (node_ctr, root_node).
const metadataEncodedSize = 8*4 + 4*2

// Metadata is the content of block 0: the parameters the store was created
// with, plus the counters needed to resume after a reload.
type Metadata struct {
	Fanout        int
	BlockSize     int
	NodeIdentSize int
	SearchKeySize int
	NodeCtr       NodeIdent
	RootNode      NodeIdent
}

// encodeNode serializes a node as S little-endian search keys followed by S
// little-endian node identifiers, with no header and no separating padding.
// size is never stored; it is recovered on decode from the count of leading
// non-zero separator entries.
func encodeNode(node *Node, fanout, blockSize int) ([]byte, error) {
	required := fanout*8 + fanout*4
	if blockSize < required {
		return nil, fmt.Errorf("bptree: block size %d too small for fanout %d", blockSize, fanout)
	}
	buf := make([]byte, blockSize)
	off := 0
	for i := 0; i < fanout; i++ {
		binary.LittleEndian.PutUint64(buf[off:], uint64(node.Separators[i]))
		off += 8
	}
	for i := 0; i < fanout; i++ {
		binary.LittleEndian.PutUint32(buf[off:], uint32(node.Children[i]))
		off += 4
	}
	return buf, nil
}

func decodeNode(data []byte, fanout int) (*Node, error) {
	required := fanout*8 + fanout*4
	if len(data) < required {
		return nil, fmt.Errorf("bptree: block of %d bytes too small to decode fanout %d node", len(data), fanout)
	}
	node := newNode(fanout)
	off := 0
	for i := 0; i < fanout; i++ {
		node.Separators[i] = SearchKey(binary.LittleEndian.Uint64(data[off:]))
		off += 8
	}
	for i := 0; i < fanout; i++ {
		node.Children[i] = NodeIdent(binary.LittleEndian.Uint32(data[off:]))
		off += 4
	}
	size := 0
	for size < fanout && node.Separators[size] != 0 {
		size++
	}
	node.Size = size
	return node, nil
}

func encodeMetadata(m Metadata, blockSize int) ([]byte, error) {
	if blockSize < metadataEncodedSize {
		return nil, fmt.Errorf("bptree: block size %d too small for metadata", blockSize)
	}
	buf := make([]byte, blockSize)
	off := 0
	binary.LittleEndian.PutUint64(buf[off:], uint64(m.Fanout))
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], uint64(m.BlockSize))
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], uint64(m.NodeIdentSize))
	off += 8
	binary.LittleEndian.PutUint64(buf[off:], uint64(m.SearchKeySize))
	off += 8
	binary.LittleEndian.PutUint32(buf[off:], uint32(m.NodeCtr))
	off += 4
	binary.LittleEndian.PutUint32(buf[off:], uint32(m.RootNode))
	off += 4
	return buf, nil
}

func decodeMetadata(data []byte) (Metadata, error) {
	if len(data) < metadataEncodedSize {
		return Metadata{}, fmt.Errorf("bptree: metadata block of %d bytes too small", len(data))
	}
	off := 0
	fanout := binary.LittleEndian.Uint64(data[off:])
	off += 8
	blockSize := binary.LittleEndian.Uint64(data[off:])
	off += 8
	identSize := binary.LittleEndian.Uint64(data[off:])
	off += 8
	keySize := binary.LittleEndian.Uint64(data[off:])
	off += 8
	nodeCtr := binary.LittleEndian.Uint32(data[off:])
	off += 4
	root := binary.LittleEndian.Uint32(data[off:])
	off += 4
	return Metadata{
		Fanout:        int(fanout),
		BlockSize:     int(blockSize),
		NodeIdentSize: int(identSize),
		SearchKeySize: int(keySize),
		NodeCtr:       NodeIdent(nodeCtr),
		RootNode:      NodeIdent(root),
	}, nil
}
