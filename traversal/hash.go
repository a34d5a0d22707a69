package traversal

import (
	"fmt"
	"math"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/kbukum/graphkit/structure"
)

// HashValue returns a structural hash of v. Equal values hash equally;
// child traversals hash by their steps, elements by their id.
func HashValue(v any) uint64 {
	switch x := v.(type) {
	case nil:
		return 0
	case string:
		return xxhash.Sum64String("s:" + x)
	case structure.Token:
		return xxhash.Sum64String("t:" + x.String())
	case bool:
		return xxhash.Sum64String("b:" + strconv.FormatBool(x))
	case int:
		return xxhash.Sum64String("i:" + strconv.FormatInt(int64(x), 10))
	case int32:
		return xxhash.Sum64String("i:" + strconv.FormatInt(int64(x), 10))
	case int64:
		return xxhash.Sum64String("i:" + strconv.FormatInt(x, 10))
	case float64:
		return xxhash.Sum64String("f:" + strconv.FormatUint(math.Float64bits(x), 16))
	case *Traversal:
		return x.Hash()
	case Provider:
		return x.hash()
	case structure.Element:
		return xxhash.Sum64String(fmt.Sprintf("e:%T:%v", x, x.ID()))
	default:
		return xxhash.Sum64String(fmt.Sprintf("%T:%v", v, v))
	}
}

func hashString(s string) uint64 { return xxhash.Sum64String(s) }
