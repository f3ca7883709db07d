package transport

import "github.com/nabbar/htcore/herrs"

func asNetworkErr(err error) herrs.Error {
	if he, ok := err.(herrs.Error); ok {
		return he
	}
	return herrs.Wrap(herrs.KindNetwork, err)
}
