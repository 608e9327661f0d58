// Package hclconfig reads pipeline definitions written in HCL.
//
// A definition is one file or a directory of .hcl files, all merged into a
// single Definition:
//
//	pipeline {
//	  max_loops = 20
//	}
//
//	node "first" {
//	  action     = "add_value"
//	  init       = { add = 2 }
//	  parameters = { scale = 1 }
//	  input      = true
//	}
//
//	node "second" {
//	  shares = "first"
//	}
//
//	connect {
//	  path    = ["first", "second"]
//	  weights = [1]
//	}
//
// Expressions may read environment variables through the env object, for
// example url = env.SOCKET_URL. The package only decodes; building and
// checking the graph is up to the caller.
package hclconfig
