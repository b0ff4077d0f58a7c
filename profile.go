/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"net/http"
	"net/http/pprof"

	"github.com/julienschmidt/httprouter"
)

var profiles = []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"}

func registerProfileHandlers(prefix string, mux *httprouter.Router) {
	for _, name := range profiles {
		mux.Handler(http.MethodGet, prefix+"/pprof/"+name, pprof.Handler(name))
	}

	mux.HandlerFunc(http.MethodGet, prefix+"/pprof/cmdline", pprof.Cmdline)
	mux.HandlerFunc(http.MethodGet, prefix+"/pprof/profile", pprof.Profile)
	mux.HandlerFunc(http.MethodGet, prefix+"/pprof/symbol", pprof.Symbol)
	mux.HandlerFunc(http.MethodGet, prefix+"/pprof/trace", pprof.Trace)
}
