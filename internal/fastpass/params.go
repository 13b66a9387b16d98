package fastpass

import (
	"sort"
	"strings"
)

// Param es un par (key, value) sin encodear.
type Param struct {
	Key   string
	Value string
}

// Params es una lista ordenada de parámetros. Admite keys repetidas.
type Params []Param

// Get devuelve el primer valor para key.
func (p Params) Get(key string) (string, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

type encodedParam struct {
	raw Param
	key string
	val string
}

// sortParams ordena por key encodeada y, ante keys repetidas, por valor encodeado.
// Devuelve los pares crudos en ese orden y el parameter string normalizado
// (k1=v1&k2=v2...) que entra en la base string.
func sortParams(params Params) (Params, string) {
	enc := make([]encodedParam, len(params))
	for i, p := range params {
		enc[i] = encodedParam{raw: p, key: PercentEncode(p.Key), val: PercentEncode(p.Value)}
	}
	sort.SliceStable(enc, func(i, j int) bool {
		if enc[i].key != enc[j].key {
			return enc[i].key < enc[j].key
		}
		return enc[i].val < enc[j].val
	})

	sorted := make(Params, len(enc))
	pairs := make([]string, len(enc))
	for i, e := range enc {
		sorted[i] = e.raw
		pairs[i] = e.key + "=" + e.val
	}
	return sorted, strings.Join(pairs, "&")
}
