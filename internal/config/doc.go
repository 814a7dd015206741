// Package config loads and validates the moor.hcl declaration.
//
// A declaration names the desired end-state: image blocks describing
// engine images and container blocks describing containers created from
// them. Containers refer to images by block label, either as a bare
// string or as an expression ("image.nginx") resolved through an HCL
// evaluation context.
//
// Example declaration:
//
//	image "nginx" {
//	  name         = "nginx:1.27"
//	  keep_locally = false
//	}
//
//	container "web" {
//	  image = image.nginx
//	  name  = "tutorial"
//
//	  ports {
//	    internal = 80
//	    external = 8000
//	  }
//	}
package config
