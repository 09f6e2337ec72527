//go:build !linux

package fsx

func fillSys(info *FileInfo, sys any) {}
