package services

import (
	"docmeta/locks"
	"docmeta/repositories"
	"docmeta/search"
	"docmeta/storage"
)

type Container struct {
	Identity  IdentityService
	Quota     QuotaService
	Folder    FolderService
	File      FileService
	Transfer  TransferService
	Thumbnail ThumbnailService
}

func NewContainer(
	repos repositories.Container,
	blobs storage.BlobStore,
	locker locks.Locker,
	indexer search.Indexer,
	selector *ProviderSelector,
) *Container {
	identity := NewIdentityService(repos.Identity)
	quota := NewQuotaService(repos.Quota, repos.Folders, repos.Tree, repos.Files)
	folder := NewFolderService(repos.TxManager, repos.Folders, repos.Tree, repos.Files,
		repos.Orders, repos.Tags, repos.Bunch, quota, blobs, locker, indexer)
	file := NewFileService(repos.TxManager, repos.Folders, repos.Tree, repos.Files,
		repos.Orders, repos.Tags, quota, blobs, locker, indexer)

	return &Container{
		Identity:  identity,
		Quota:     quota,
		Folder:    folder,
		File:      file,
		Transfer:  NewTransferService(identity, folder, file, selector, repos.Folders, repos.Files),
		Thumbnail: NewThumbnailService(repos.Files, blobs),
	}
}
