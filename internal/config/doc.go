// Package config provides configuration parsing for obsrv hosts.
//
// The configuration is stored in obsrv.json next to the description file.
// This package handles loading, saving, and validating configuration.
//
// # Configuration File Structure
//
//	{
//	  "description": "store.hcl",
//	  "server": {
//	    "address": "localhost:7070"
//	  },
//	  "json": {
//	    "indent": 2
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "obsrv",
//	    "path": "/metrics"
//	  },
//	  "tracing": {
//	    "enabled": false,
//	    "tracerName": "obsrv"
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Address:", cfg.Server.Address)
package config
